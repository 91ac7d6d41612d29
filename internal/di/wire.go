//go:build wireinject
// +build wireinject

package di

import (
	"EdgarPull/pkg/config"
	"EdgarPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream access and resolution
		ProvideFeedClient,
		ProvideDirectory,
		ProvideResolver,
		ProvideResponseCache,

		// Backends
		ProvideFilingStore,
		ProvidePublisher,
		ProvideStorage,

		// Use cases
		ProvideForm4Parser,
		ProvideForm13FParser,
		ProvideRecordSink,
		ProvideOrchestrator,

		// Serving
		ProvideProgressHub,
		ProvideFilingsHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
