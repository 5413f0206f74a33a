//go:build wireinject
// +build wireinject

package di

import (
	"PairView/pkg/config"
	"PairView/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure
		ProvideCounterStore,
		ProvideChartDataClient,

		// Use cases
		ProvideValidator,
		ProvideSessionRegistry,
		ProvideLimiter,

		// Transport
		ProvideWebHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
