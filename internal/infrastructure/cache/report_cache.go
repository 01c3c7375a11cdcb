// Package cache implementa la caché de reportes sobre Redis con claves versionadas:
// invalidar es incrementar la versión global, sin borrar claves.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

const (
	versionKey  = "stock-ledger:reports:version"
	bumpChannel = "stock-ledger.reports.bump"
)

var _ analytics.ReportCache = (*ReportCache)(nil)

// ReportCache caché JSON de reportes con TTL.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewReportCache construye la caché. ttl <= 0 deja las entradas sin expiración.
func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

// Version versión vigente; la inicializa en 1 si no existe.
func (c *ReportCache) Version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) || (err == nil && ver <= 0) {
		if err := c.client.Set(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey compone la clave con la versión vigente.
func (c *ReportCache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", strings.Join(parts, ":"), ver), nil
}

// FetchJSON lee key (versionada) o la llena con loader. Si Redis no responde se calcula
// directamente; solo los errores del loader se propagan.
func (c *ReportCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	full, err := c.BuildKey(ctx, key)
	if err != nil {
		return load(ctx, dest, loader, nil)
	}
	payload, err := c.client.Get(ctx, full).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return load(ctx, dest, loader, nil)
	}
	return load(ctx, dest, loader, func(raw []byte) {
		_ = c.client.Set(ctx, full, raw, c.ttl).Err()
	})
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error), store func([]byte)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if store != nil {
		store(raw)
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate incrementa la versión y avisa a las demás instancias.
func (c *ReportCache) Invalidate(ctx context.Context) error {
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation se suscribe a los avisos de otras instancias hasta que ctx termine.
// El aviso trae la versión nueva; solo se aplica si es mayor que la local.
func (c *ReportCache) ListenForInvalidation(ctx context.Context) {
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				if cur, err := c.Version(ctx); err == nil && ver > cur {
					_ = c.client.Set(ctx, versionKey, ver, 0).Err()
				}
			}
		}
	}()
}
