package di

import (
	"context"

	"ahkneemay/application/commands/bus"
	"ahkneemay/application/ports"
	"ahkneemay/application/provisioning"
	querybus "ahkneemay/application/queries/bus"
	"ahkneemay/application/services"
	"ahkneemay/infrastructure/config"
	"ahkneemay/pkg/auth"
	"ahkneemay/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Items        ports.ItemStore
	Blobs        ports.BlobStore
	Resources    *provisioning.Resources
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Cache        ports.Cache
	Metrics      *observability.Metrics
	Tracer       *observability.Tracer
	RateLimiter  *auth.IPRateLimiter
	TokenManager *auth.TokenManager
	QuickInfo    *services.QuickInfoService
}

// Provision creates the bucket and both tables for cfg.NamePrefix without
// building the rest of the container.
func Provision(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*provisioning.Resources, error) {
	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	stores := ProvideStores(cfg, awsCfg, logger)
	return ProvideResources(ctx, ProvideProvisioner(stores, cfg, logger), cfg)
}
