package usecase

import (
	"context"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	applogger "EdgarPull/pkg/logger"
)

// RecordSink fans freshly parsed records out to the publisher and the
// archive. Both legs are best effort: a sink failure is logged and the
// request still returns its records.
type RecordSink struct {
	pub   repository.Publisher
	store repository.Storage
	log   *applogger.Logger
}

// NewRecordSink creates a new RecordSink instance. Either destination may be
// nil when disabled in config.
func NewRecordSink(pub repository.Publisher, store repository.Storage, log *applogger.Logger) *RecordSink {
	return &RecordSink{pub: pub, store: store, log: log}
}

func (s *RecordSink) EmitTrades(ctx context.Context, trades []*models.InsiderTrade) {
	if len(trades) == 0 {
		return
	}
	if s.pub != nil {
		if err := s.pub.PublishTrades(ctx, trades); err != nil {
			s.warn("publish trades", err)
		}
	}
	if s.store != nil {
		if err := s.store.StoreTrades(ctx, trades); err != nil {
			s.warn("store trades", err)
		}
	}
}

func (s *RecordSink) EmitHoldings(ctx context.Context, holdings []*models.InstitutionalHolding) {
	if len(holdings) == 0 {
		return
	}
	if s.pub != nil {
		if err := s.pub.PublishHoldings(ctx, holdings); err != nil {
			s.warn("publish holdings", err)
		}
	}
	if s.store != nil {
		if err := s.store.StoreHoldings(ctx, holdings); err != nil {
			s.warn("store holdings", err)
		}
	}
}

func (s *RecordSink) warn(op string, err error) {
	if s.log != nil {
		s.log.Warn("record sink "+op+" failed", applogger.Error(err))
	}
}
