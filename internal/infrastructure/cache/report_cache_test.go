package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

type payload struct {
	Total int `json:"total"`
}

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, time.Minute), mr
}

func TestFetchJSON_SegundaLecturaDesdeCache(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Total: 42}, nil
	}

	var got payload
	require.NoError(t, c.FetchJSON(ctx, "reports:dashboard", &got, loader))
	assert.Equal(t, 42, got.Total)

	var again payload
	require.NoError(t, c.FetchJSON(ctx, "reports:dashboard", &again, loader))
	assert.Equal(t, 42, again.Total)
	assert.Equal(t, 1, calls)

	assert.True(t, mr.Exists("reports:dashboard:v1"))
	assert.Equal(t, time.Minute, mr.TTL("reports:dashboard:v1"))
}

func TestInvalidate_CambiaLaVersion(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Total: calls}, nil
	}

	var got payload
	require.NoError(t, c.FetchJSON(ctx, "k", &got, loader))
	require.NoError(t, c.Invalidate(ctx))

	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)

	require.NoError(t, c.FetchJSON(ctx, "k", &got, loader))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 2, calls)
}

func TestFetchJSON_ErrorDelLoaderNoSeCachea(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("db caída")
	var got payload
	err := c.FetchJSON(context.Background(), "k", &got, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k:v1"))
}

func TestFetchJSON_RedisCaido(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	var got payload
	err := c.FetchJSON(context.Background(), "k", &got, func(context.Context) (any, error) { return payload{Total: 9}, nil })
	require.NoError(t, err)
	assert.Equal(t, 9, got.Total)

	assert.Error(t, c.Invalidate(context.Background()))
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	_, err = NewClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
