package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ahkneemay/application/ports/mocks"
	"ahkneemay/infrastructure/cache"
	pkgerrors "ahkneemay/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQuickInfoService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches once and serves from cache", func(t *testing.T) {
		var hits int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			fmt.Fprintf(w, "Show Name@%s\nPremiered@2002", r.URL.Query().Get("show"))
		}))
		defer upstream.Close()

		c := cache.NewInMemoryCache(0)
		defer c.Close()
		svc := NewQuickInfoService(QuickInfoConfig{Endpoint: upstream.URL, CacheTTL: time.Hour, Timeout: time.Second}, nil, c, zap.NewNop())

		info, err := svc.Lookup(ctx, "Cowboy Bebop")
		require.NoError(t, err)
		assert.Equal(t, "Show Name@Cowboy Bebop\nPremiered@2002", info)

		again, err := svc.Lookup(ctx, "cowboy bebop")
		require.NoError(t, err)
		assert.Equal(t, info, again)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("empty show", func(t *testing.T) {
		svc := NewQuickInfoService(QuickInfoConfig{}, nil, &mocks.MockCache{}, zap.NewNop())
		_, err := svc.Lookup(ctx, " ")
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("upstream failure is unavailable and not cached", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer upstream.Close()

		c := &mocks.MockCache{}
		c.On("Get", ctx, "quickinfo:naruto").Return("", false, nil)

		svc := NewQuickInfoService(QuickInfoConfig{Endpoint: upstream.URL, CacheTTL: time.Hour}, upstream.Client(), c, zap.NewNop())
		_, err := svc.Lookup(ctx, "Naruto")

		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
		assert.True(t, pkgerrors.IsFatal(err))
		c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache errors fall through to upstream", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		}))
		defer upstream.Close()

		c := &mocks.MockCache{}
		c.On("Get", ctx, "quickinfo:naruto").Return("", false, errors.New("redis down"))
		c.On("Set", ctx, "quickinfo:naruto", "ok", time.Minute).Return(errors.New("redis down"))

		svc := NewQuickInfoService(QuickInfoConfig{Endpoint: upstream.URL, CacheTTL: time.Minute}, nil, c, zap.NewNop())
		info, err := svc.Lookup(ctx, "naruto")

		require.NoError(t, err)
		assert.Equal(t, "ok", info)
		c.AssertExpectations(t)
	})

	t.Run("breaker opens after repeated failures", func(t *testing.T) {
		var hits int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		c := cache.NewInMemoryCache(0)
		defer c.Close()
		svc := NewQuickInfoService(QuickInfoConfig{Endpoint: upstream.URL, CacheTTL: time.Minute}, nil, c, zap.NewNop())

		for i := 0; i < 7; i++ {
			_, err := svc.Lookup(ctx, "naruto")
			require.Error(t, err)
		}
		assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
	})
}
