//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"ahkneemay/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideAWSConfig,
	ProvideStores,
	ProvideItemStore,
	ProvideBlobStore,
	ProvideProvisioner,
	ProvideResources,
	ProvideRedisClient,
	ProvideCache,
	ProvideRateLimiter,
	ProvidePasswordHasher,
	ProvideTokenManager,
	ProvideTracer,
	ProvideMetrics,
	ProvideQuickInfoService,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
