package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ahkneemay/application/ports"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// maxQuickInfoBytes bounds the upstream body kept in memory and in cache
const maxQuickInfoBytes = 64 << 10

// QuickInfoConfig configures QuickInfoService
type QuickInfoConfig struct {
	Endpoint string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// QuickInfoService looks up show summaries from an upstream plain-text
// endpoint and caches them
type QuickInfoService struct {
	cfg     QuickInfoConfig
	client  *http.Client
	cache   ports.Cache
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewQuickInfoService creates a new quick info service
func NewQuickInfoService(cfg QuickInfoConfig, client *http.Client, cache ports.Cache, logger *zap.Logger) *QuickInfoService {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "quickinfo",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &QuickInfoService{
		cfg:     cfg,
		client:  client,
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

// Lookup returns the quick info text for show
func (s *QuickInfoService) Lookup(ctx context.Context, show string) (string, error) {
	show = strings.TrimSpace(show)
	if show == "" {
		return "", pkgerrors.NewValidationError("The name of the show is required.")
	}

	cacheKey := "quickinfo:" + strings.ToLower(show)
	if cached, ok, err := s.cache.Get(ctx, cacheKey); err != nil {
		s.logger.Warn("Quick info cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(ctx, show)
	})
	if err != nil {
		return "", pkgerrors.NewUnavailableError("quickinfo", err)
	}
	text := result.(string)

	if err := s.cache.Set(ctx, cacheKey, text, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Quick info cache write failed", zap.Error(err))
	}
	return text, nil
}

func (s *QuickInfoService) fetch(ctx context.Context, show string) (string, error) {
	endpoint := s.cfg.Endpoint + "?show=" + url.QueryEscape(show)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuickInfoBytes))
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	return string(body), nil
}
