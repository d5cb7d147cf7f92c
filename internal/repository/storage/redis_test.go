package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStorage(t *testing.T) {
	t.Run("Connects and pings", func(t *testing.T) {
		// Given: a running redis
		server := miniredis.RunT(t)
		ctx := context.Background()

		// When: connecting
		storage, err := NewRedisStorage(ctx, server.Addr())

		// Then: the connection answers pings until closed
		require.NoError(t, err)
		require.NoError(t, storage.Ping(ctx))
		require.NoError(t, storage.Close())
	})

	t.Run("Fails when redis is unreachable", func(t *testing.T) {
		// Given: a redis that has been shut down
		server := miniredis.RunT(t)
		addr := server.Addr()
		server.Close()

		// When: connecting
		_, err := NewRedisStorage(context.Background(), addr)

		// Then: an error is returned
		require.Error(t, err)
	})

	t.Run("Ping fails after redis goes away", func(t *testing.T) {
		server := miniredis.RunT(t)
		ctx := context.Background()
		storage, err := NewRedisStorage(ctx, server.Addr())
		require.NoError(t, err)
		t.Cleanup(func() { _ = storage.Close() })

		server.Close()

		require.Error(t, storage.Ping(ctx))
	})
}
