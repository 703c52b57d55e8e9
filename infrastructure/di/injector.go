//go:build !wireinject
// +build !wireinject

// The injector below mirrors the provider set in wire.go and is kept in step
// with it by hand.

package di

import (
	"context"

	"ahkneemay/infrastructure/config"
)

// Injectors from wire.go:

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	awsConfig, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	stores := ProvideStores(cfg, awsConfig, logger)
	itemStore := ProvideItemStore(stores)
	blobStore := ProvideBlobStore(stores)
	provisioner := ProvideProvisioner(stores, cfg, logger)
	resources, err := ProvideResources(ctx, provisioner, cfg)
	if err != nil {
		return nil, nil, err
	}
	domainConfig := ProvideDomainConfig()
	passwordHasher := ProvidePasswordHasher(cfg)
	tracer := ProvideTracer()
	metrics := ProvideMetrics(awsConfig, cfg, logger)
	commandBus, err := ProvideCommandBus(itemStore, blobStore, resources, domainConfig, passwordHasher, tracer, metrics, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	queryBus, err := ProvideQueryBus(itemStore, blobStore, resources, passwordHasher, tracer, metrics, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	client, cleanup, err := ProvideRedisClient(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cache, cleanup2 := ProvideCache(client)
	ipRateLimiter := ProvideRateLimiter(client, cfg)
	tokenManager, err := ProvideTokenManager(cfg, logger)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	quickInfoService := ProvideQuickInfoService(cfg, cache, logger)
	container := &Container{
		Config:       cfg,
		Logger:       logger,
		Items:        itemStore,
		Blobs:        blobStore,
		Resources:    resources,
		CommandBus:   commandBus,
		QueryBus:     queryBus,
		Cache:        cache,
		Metrics:      metrics,
		Tracer:       tracer,
		RateLimiter:  ipRateLimiter,
		TokenManager: tokenManager,
		QuickInfo:    quickInfoService,
	}
	return container, func() {
		cleanup2()
		cleanup()
	}, nil
}
