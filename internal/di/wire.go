//go:build wireinject
// +build wireinject

package di

import (
	"MakerLens/pkg/config"
	"MakerLens/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Backend infrastructure
		ProvideResultStore,
		ProvidePublisher,
		ProvideSummaryCache,

		// Use cases
		ProvidePipeline,
		ProvideResultProcessor,
		ProvideRunHolder,

		// API surface
		ProvideResultsHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
