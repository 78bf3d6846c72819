package app

import (
	"context"
	"io"
	"testing"

	"github.com/go-chi/httplog/v2"
	"github.com/stretchr/testify/assert"
	"github.com/vadimbarashkov/short-url/internal/config"
)

func TestNewURLStore(t *testing.T) {
	logger := httplog.NewLogger("", httplog.Options{Writer: io.Discard})

	t.Run("unknown storage", func(t *testing.T) {
		store, err := newURLStore(context.Background(), &config.Config{Storage: "cassandra"}, logger)

		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("unreachable redis", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.StorageRedis,
			Redis:   config.Redis{Addr: "127.0.0.1:1"},
		}

		store, err := newURLStore(context.Background(), cfg, logger)

		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("memory", func(t *testing.T) {
		store, err := newURLStore(context.Background(), &config.Config{Storage: config.StorageMemory}, logger)

		assert.NoError(t, err)
		assert.NotNil(t, store)
		assert.NoError(t, store.Ping(context.Background()))
		assert.NoError(t, store.Close())
	})
}
