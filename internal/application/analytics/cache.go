package analytics

import (
	"context"
	"encoding/json"
)

// ReportCache guarda resultados de reportes serializados como JSON.
// FetchJSON devuelve el valor cacheado en dest o lo calcula con loader y lo guarda.
// Invalidate descarta todo lo cacheado (los movimientos cambian los agregados).
type ReportCache interface {
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Invalidate(ctx context.Context) error
}

// noCache calcula siempre. Se usa cuando Redis no está configurado.
type noCache struct{}

func (noCache) FetchJSON(ctx context.Context, _ string, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (noCache) Invalidate(context.Context) error { return nil }
