package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"EdgarPull/internal/domain/models"
	"EdgarPull/internal/domain/repository"
	pkgkafka "EdgarPull/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db            *sql.DB
	tradesTable   string
	holdingsTable string
}

// NewClickHouseStorage creates ClickHouse storage over an open pool.
func NewClickHouseStorage(db *sql.DB, tradesTable, holdingsTable string) repository.Storage {
	return &ClickHouseStorage{db: db, tradesTable: tradesTable, holdingsTable: holdingsTable}
}

func (s *ClickHouseStorage) StoreTrades(ctx context.Context, trades []*models.InsiderTrade) error {
	if len(trades) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(trades); start += chunkSize {
		end := start + chunkSize
		if end > len(trades) {
			end = len(trades)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*13)
		for _, t := range trades[start:end] {
			if t == nil || t.ID == "" {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				t.ID,
				t.Ticker,
				t.InsiderName,
				t.Role,
				string(t.TradeType),
				t.Shares,
				t.Price.String(),
				t.Value.String(),
				t.FilingDate,
				t.TransactionDate,
				string(t.DateSource),
				t.FormType,
				t.SourceURL,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (id, ticker, insider_name, role, trade_type, shares, price, value, filing_date, transaction_date, date_source, form_type, source_url) VALUES %s",
			s.tradesTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store trades: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseStorage) StoreHoldings(ctx context.Context, holdings []*models.InstitutionalHolding) error {
	if len(holdings) == 0 {
		return nil
	}
	values := make([]string, 0, len(holdings))
	args := make([]interface{}, 0, len(holdings)*12)
	for _, h := range holdings {
		if h == nil || h.ID == "" {
			continue
		}
		positions, err := json.Marshal(h.Holdings)
		if err != nil {
			return fmt.Errorf("store holdings marshal: %w", err)
		}
		unavailable := uint8(0)
		if h.DataUnavailable {
			unavailable = 1
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			h.ID,
			h.Ticker,
			h.CIK,
			h.InstitutionName,
			h.TotalSharesHeld,
			h.TotalValueHeld.String(),
			h.FilingDate,
			h.QuarterEnd,
			h.FormType,
			h.SourceURL,
			unavailable,
			string(positions),
		)
	}
	if len(values) == 0 {
		return nil
	}
	q := fmt.Sprintf("INSERT INTO %s (id, ticker, cik, institution_name, total_shares, total_value, filing_date, quarter_end, form_type, source_url, data_unavailable, positions) VALUES %s",
		s.holdingsTable, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store holdings: %w", err)
	}
	return nil
}

func (s *ClickHouseStorage) QueryTrades(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.InsiderTrade, error) {
	q := fmt.Sprintf("SELECT id, ticker, insider_name, role, trade_type, shares, price, value, filing_date, transaction_date, date_source, form_type, source_url FROM %s WHERE ticker = ? AND filing_date >= ? AND filing_date <= ? ORDER BY filing_date DESC LIMIT ?", s.tradesTable)
	rows, err := s.db.QueryContext(ctx, q, ticker, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	var trades []*models.InsiderTrade
	for rows.Next() {
		var (
			t            models.InsiderTrade
			tradeType    string
			dateSource   string
			price, value string
		)
		if err := rows.Scan(&t.ID, &t.Ticker, &t.InsiderName, &t.Role, &tradeType, &t.Shares, &price, &value, &t.FilingDate, &t.TransactionDate, &dateSource, &t.FormType, &t.SourceURL); err != nil {
			return nil, err
		}
		t.TradeType = models.TradeType(tradeType)
		t.DateSource = models.DateSource(dateSource)
		if d, err := decimal.NewFromString(price); err == nil {
			t.Price = d
		}
		if d, err := decimal.NewFromString(value); err == nil {
			t.Value = d
		}
		trades = append(trades, &t)
	}
	return trades, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // pool owned by pkg client
}

// KafkaPublisher implements Publisher for Kafka. Messages are keyed by
// ticker so per-symbol ordering survives partitioning.
type KafkaPublisher struct {
	producer      *pkgkafka.Producer
	tradesTopic   string
	holdingsTopic string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, tradesTopic, holdingsTopic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, tradesTopic: tradesTopic, holdingsTopic: holdingsTopic}
}

func (p *KafkaPublisher) PublishTrades(ctx context.Context, trades []*models.InsiderTrade) error {
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(trades))
	for i, t := range trades {
		msgs[i] = pkgkafka.Message{Key: []byte(t.Ticker), Value: t}
	}
	return p.producer.PublishBatch(ctx, p.tradesTopic, msgs)
}

func (p *KafkaPublisher) PublishHoldings(ctx context.Context, holdings []*models.InstitutionalHolding) error {
	if len(holdings) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(holdings))
	for i, h := range holdings {
		msgs[i] = pkgkafka.Message{Key: []byte(h.Ticker), Value: h}
	}
	return p.producer.PublishBatch(ctx, p.holdingsTopic, msgs)
}

// PublishMessage sends an arbitrary payload to topic. It satisfies the
// logger collector's Publisher so aggregated logs ride the same producer.
func (p *KafkaPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
