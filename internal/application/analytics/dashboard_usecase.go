// Package analytics contiene los reportes de solo lectura: dashboard, stock bajo,
// valor de inventario, movimientos y resumen de pedidos.
package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// ReportUseCase genera los reportes. Los agregados globales pasan por la caché;
// los reportes con rango libre se consultan siempre.
type ReportUseCase struct {
	repo  repository.ReportRepository
	cache ReportCache
	log   *logger.Logger
	now   func() time.Time
}

// NewReportUseCase construye el caso de uso. cache nil = sin caché.
func NewReportUseCase(repo repository.ReportRepository, cache ReportCache, log *logger.Logger) *ReportUseCase {
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReportUseCase{repo: repo, cache: cache, log: log.Component("reports"), now: time.Now}
}

// Dashboard resumen del catálogo y de los pedidos del mes en curso.
//
// Tres consultas en paralelo:
//  1. CatalogStats     → productos, stock bajo, valor del stock
//  2. ActiveSuppliers  → proveedores activos
//  3. OrderStats(mes)  → pendientes, pedidos del mes, ventas entregadas
func (uc *ReportUseCase) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	now := uc.now()
	monthStart, monthEnd := monthRange(now)

	var out dto.DashboardResponse
	key := "reports:dashboard:" + monthStart.Format("2006-01")
	err := uc.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		var (
			catalog   repository.CatalogStats
			suppliers int
			orders    repository.OrderStats
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			if catalog, err = uc.repo.CatalogStats(gctx); err != nil {
				return fmt.Errorf("dashboard: catálogo: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if suppliers, err = uc.repo.ActiveSuppliers(gctx); err != nil {
				return fmt.Errorf("dashboard: proveedores: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if orders, err = uc.repo.OrderStats(gctx, monthStart, monthEnd); err != nil {
				return fmt.Errorf("dashboard: pedidos del mes: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &dto.DashboardResponse{
			TotalProducts:        catalog.TotalProducts,
			ActiveSuppliers:      suppliers,
			LowStockProducts:     catalog.LowStockCount,
			PendingOrders:        orders.PendingOrders,
			TotalStockValue:      catalog.TotalStockValue.Round(2),
			MonthlyOrders:        orders.PeriodOrders,
			MonthlyDeliveredSale: orders.PeriodDeliveredSales.Round(2),
			Month:                monthLabel(now),
			GeneratedAt:          now,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Invalidate descarta los reportes cacheados. Un fallo de Redis solo se registra.
func (uc *ReportUseCase) Invalidate(ctx context.Context) {
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché de reportes")
	}
}

// MovementCommitted invalida la caché tras cada movimiento confirmado.
func (uc *ReportUseCase) MovementCommitted(ctx context.Context, _ *entity.StockMovement) {
	uc.Invalidate(ctx)
}

// StatusChanged invalida la caché cuando un pedido cambia de estado.
func (uc *ReportUseCase) StatusChanged(ctx context.Context, _ *entity.Order, _ entity.OrderStatus) {
	uc.Invalidate(ctx)
}

// monthRange mes calendario que contiene t.
func monthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
