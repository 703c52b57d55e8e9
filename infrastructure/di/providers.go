package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ahkneemay/application/commands"
	"ahkneemay/application/commands/bus"
	commandhandlers "ahkneemay/application/commands/handlers"
	"ahkneemay/application/ports"
	"ahkneemay/application/provisioning"
	"ahkneemay/application/queries"
	querybus "ahkneemay/application/queries/bus"
	queryhandlers "ahkneemay/application/queries/handlers"
	"ahkneemay/application/services"
	domainconfig "ahkneemay/domain/config"
	"ahkneemay/infrastructure/cache"
	"ahkneemay/infrastructure/config"
	"ahkneemay/infrastructure/persistence/dynamodb"
	"ahkneemay/infrastructure/persistence/memory"
	"ahkneemay/infrastructure/persistence/s3"
	"ahkneemay/pkg/auth"
	"ahkneemay/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "ahkneemay"

// Stores groups the item and blob store selected for the run
type Stores struct {
	Items ports.ItemStore
	Blobs ports.BlobStore
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = level

	return zapCfg.Build(zap.Fields(zap.String("service", serviceName)))
}

// ProvideDomainConfig returns the business rules
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideAWSConfig creates AWS configuration. With tracing enabled every SDK
// call is recorded as a subsegment.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideStores selects in-memory stores in mock mode and live AWS stores
// otherwise
func ProvideStores(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger) *Stores {
	if cfg.UseMockStores {
		logger.Info("Using in-memory stores")
		return &Stores{
			Items: memory.NewItemStore(),
			Blobs: memory.NewBlobStore(),
		}
	}

	return &Stores{
		Items: dynamodb.NewItemStore(awsdynamodb.NewFromConfig(awsCfg), dynamodb.DefaultItemStoreOptions(), logger),
		Blobs: s3.NewBlobStoreFromClient(awss3.NewFromConfig(awsCfg), cfg.AWSRegion, logger),
	}
}

// ProvideItemStore exposes the selected item store
func ProvideItemStore(stores *Stores) ports.ItemStore {
	return stores.Items
}

// ProvideBlobStore exposes the selected blob store
func ProvideBlobStore(stores *Stores) ports.BlobStore {
	return stores.Blobs
}

// ProvideProvisioner creates the provisioner for the selected stores
func ProvideProvisioner(stores *Stores, cfg *config.Config, logger *zap.Logger) *provisioning.Provisioner {
	return provisioning.NewProvisioner(stores.Items, stores.Blobs, cfg.AWSRegion, logger)
}

// ProvideResources provisions the bucket and tables
func ProvideResources(ctx context.Context, provisioner *provisioning.Provisioner, cfg *config.Config) (*provisioning.Resources, error) {
	return provisioner.Provision(ctx, cfg.NamePrefix)
}

// ProvideRedisClient connects to Redis when REDIS_URL is set and returns nil
// otherwise
func ProvideRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, func(), error) {
	if cfg.RedisURL == "" {
		return nil, func() {}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideCache creates a Redis cache when a client exists, else an
// in-memory one
func ProvideCache(client *redis.Client) (ports.Cache, func()) {
	if client != nil {
		return cache.NewRedisCache(client, serviceName), func() {}
	}
	c := cache.NewInMemoryCache(time.Minute)
	return c, func() { _ = c.Close() }
}

// ProvideRateLimiter limits sign-up and login attempts per client IP
func ProvideRateLimiter(client *redis.Client, cfg *config.Config) *auth.IPRateLimiter {
	if client != nil {
		return auth.NewIPRateLimiter(auth.NewRedisRateLimiter(client, cfg.AuthRateLimit, time.Minute, "auth"))
	}
	return auth.NewIPRateLimiter(auth.NewSlidingWindowLimiter(cfg.AuthRateLimit, time.Minute))
}

// ProvidePasswordHasher creates the bcrypt hasher
func ProvidePasswordHasher(cfg *config.Config) *auth.PasswordHasher {
	return auth.NewPasswordHasher(cfg.BcryptCost)
}

// ProvideTokenManager creates the session token manager. Outside production
// a missing secret is replaced by a random one, so sessions end on restart.
func ProvideTokenManager(cfg *config.Config, logger *zap.Logger) (*auth.TokenManager, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("JWT_SECRET not set, using an ephemeral secret")
	}
	return auth.NewTokenManager(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
		TTL:       cfg.TokenTTL,
	})
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer() *observability.Tracer {
	return observability.NewTracer(serviceName)
}

// ProvideMetrics creates metrics instance. Without ENABLE_METRICS it has no
// client and records nothing.
func ProvideMetrics(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("AhKneeMay/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, awscloudwatch.NewFromConfig(awsCfg), logger)
}

// ProvideQuickInfoService creates the quick info lookup
func ProvideQuickInfoService(cfg *config.Config, c ports.Cache, logger *zap.Logger) *services.QuickInfoService {
	return services.NewQuickInfoService(services.QuickInfoConfig{
		Endpoint: cfg.QuickInfoURL,
		CacheTTL: cfg.QuickInfoCacheTTL,
		Timeout:  cfg.QuickInfoTimeout,
	}, &http.Client{Timeout: cfg.QuickInfoTimeout}, c, logger)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	items ports.ItemStore,
	blobs ports.BlobStore,
	resources *provisioning.Resources,
	rules *domainconfig.DomainConfig,
	hasher *auth.PasswordHasher,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	middlewares := []bus.Middleware{bus.LoggingMiddleware(logger)}
	if cfg.EnableTracing {
		middlewares = append(middlewares, bus.TracingMiddleware(tracer))
	}
	middlewares = append(middlewares, bus.MetricsMiddleware(metrics))
	commandBus := bus.NewCommandBus(middlewares...)

	addHandler := commandhandlers.NewAddOrUpdateEntryHandler(items, blobs, resources, rules, logger)
	removeHandler := commandhandlers.NewRemoveEntryHandler(items, blobs, resources, logger)
	signUpHandler := commandhandlers.NewSignUpHandler(items, hasher, resources, rules, logger)

	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.AddOrUpdateEntryCommand{}, bus.HandlerFor(addHandler.Handle)},
		{commands.RemoveEntryCommand{}, bus.HandlerFor(removeHandler.Handle)},
		{commands.SignUpCommand{}, bus.HandlerFor(signUpHandler.Handle)},
	}
	for _, r := range registrations {
		if err := commandBus.Register(r.cmd, r.handler); err != nil {
			return nil, err
		}
	}

	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	items ports.ItemStore,
	blobs ports.BlobStore,
	resources *provisioning.Resources,
	hasher *auth.PasswordHasher,
	tracer *observability.Tracer,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	middlewares := []querybus.Middleware{querybus.LoggingMiddleware(logger)}
	if cfg.EnableTracing {
		middlewares = append(middlewares, querybus.TracingMiddleware(tracer))
	}
	middlewares = append(middlewares, querybus.MetricsMiddleware(metrics))
	queryBus := querybus.NewQueryBus(middlewares...)

	listHandler := queryhandlers.NewListEntriesHandler(items, blobs, resources, queryhandlers.ListingOptions{
		ImageBaseURL: cfg.CDNBaseURL,
		SignedURLs:   cfg.SignedImageURLs,
		SignedURLTTL: cfg.SignedURLTTL,
	}, logger)
	authHandler := queryhandlers.NewAuthenticateHandler(items, hasher, resources, logger)
	userHandler := queryhandlers.NewGetUserHandler(items, resources)

	registrations := []struct {
		query   querybus.Query
		handler querybus.QueryHandler
	}{
		{queries.ListEntriesQuery{}, querybus.HandlerFor(listHandler.Handle)},
		{queries.AuthenticateQuery{}, querybus.HandlerFor(authHandler.Handle)},
		{queries.GetUserQuery{}, querybus.HandlerFor(userHandler.Handle)},
	}
	for _, r := range registrations {
		if err := queryBus.Register(r.query, r.handler); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}
