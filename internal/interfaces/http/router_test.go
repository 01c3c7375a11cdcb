package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/analytics"
	"github.com/jhoicas/stock-ledger-api/internal/application/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

type fakePDF struct{}

func (fakePDF) OrderPDF(context.Context, ordering.OrderDocument) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

type routeRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *routeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, method+" "+route)
}

type testEnv struct {
	app      *fiber.App
	observer *routeRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()

	movements := inventory.NewMovementUseCase(store, store.Movements(), store.Products(), log)
	orders := ordering.NewOrderUseCase(store, store.Orders(), store.Suppliers(), movements, log)
	reports := analytics.NewReportUseCase(store.Reports(), nil, log)
	movements.AddObserver(reports)
	orders.AddObserver(reports)

	obs := &routeRecorder{}
	app := apphttp.NewApp("test", log, obs)
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:  catalog.NewProductUseCase(store, store.Products(), store.Suppliers(), movements, log),
		SupplierUC: catalog.NewSupplierUseCase(store.Suppliers(), store.Products()),
		MovementUC: movements,
		OrderUC:    orders,
		DocumentUC: ordering.NewDocumentUseCase(store.Orders(), store.Suppliers(), store.Products(), fakePDF{}),
		ReportUC:   reports,
		JWTSecret:  testJWTSecret,
		AdminRoles: []string{"admin"},
	})
	return &testEnv{app: app, observer: obs}
}

// call ejecuta la petición con un token del rol indicado ("-" = sin token).
func (e *testEnv) call(t *testing.T, method, path string, body any, role string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "-" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return m
}

// createProduct crea un proveedor y un producto con stock inicial y devuelve el id del producto.
func (e *testEnv) createProduct(t *testing.T, ref string, stock int) string {
	t.Helper()
	resp, raw := e.call(t, http.MethodPost, "/api/suppliers", map[string]any{"name": "Ferretería " + ref}, "bodeguero")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	supplierID := decode(t, raw)["id"].(string)

	resp, raw = e.call(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Tornillo " + ref, "reference": ref, "category": "ferretería",
		"unit_price": "2.50", "stock_quantity": stock, "min_stock_level": 5, "supplier_id": supplierID,
	}, "bodeguero")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decode(t, raw)["id"].(string)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, raw := env.call(t, http.MethodGet, "/health", nil, "-")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "ok")
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))
}

func TestAPI_SinToken401(t *testing.T) {
	env := newTestEnv(t)
	resp, raw := env.call(t, http.MethodGet, "/api/products", nil, "-")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decode(t, raw)["code"])
}

func TestProducto_StockInicialYMovimientos(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, "TOR-1", 10)

	resp, raw := env.call(t, http.MethodGet, "/api/products/"+id+"/movements", nil, "bodeguero")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := decode(t, raw)["items"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, "in", first["movement_type"])
	assert.Equal(t, testUserID, first["created_by"])

	// Salida mayor al stock: 409 y nada cambia.
	resp, raw = env.call(t, http.MethodPost, "/api/products/"+id+"/stock",
		map[string]any{"movement_type": "out", "quantity": 15}, "bodeguero")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode(t, raw)["code"])

	resp, raw = env.call(t, http.MethodPost, "/api/products/"+id+"/stock",
		map[string]any{"movement_type": "out", "quantity": 4, "reason": "venta mostrador"}, "bodeguero")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	mov := decode(t, raw)
	assert.EqualValues(t, 10, mov["previous_stock"])
	assert.EqualValues(t, 6, mov["new_stock"])

	resp, raw = env.call(t, http.MethodPost, "/api/products/"+id+"/stock",
		map[string]any{"movement_type": "adjustment", "quantity": 9}, "bodeguero")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.EqualValues(t, 3, decode(t, raw)["quantity"])

	resp, raw = env.call(t, http.MethodGet, "/api/products/"+id, nil, "bodeguero")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 9, decode(t, raw)["stock_quantity"])

	resp, raw = env.call(t, http.MethodGet, "/api/products/"+id+"/reconcile", nil, "bodeguero")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rec := decode(t, raw)
	assert.Equal(t, true, rec["consistent"])
	assert.EqualValues(t, 3, rec["movements"])
}

func TestMovimiento_Errores(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, "TOR-2", 1)

	cases := map[string]struct {
		path   string
		body   map[string]any
		status int
		code   string
	}{
		"tipo desconocido":  {"/api/products/" + id + "/stock", map[string]any{"movement_type": "robo", "quantity": 1}, http.StatusBadRequest, "VALIDATION"},
		"sin cantidad":      {"/api/products/" + id + "/stock", map[string]any{"movement_type": "in"}, http.StatusBadRequest, "VALIDATION"},
		"cantidad negativa": {"/api/products/" + id + "/stock", map[string]any{"movement_type": "in", "quantity": -2}, http.StatusBadRequest, "VALIDATION"},
		"id mal formado":    {"/api/products/abc/stock", map[string]any{"movement_type": "in", "quantity": 1}, http.StatusBadRequest, "VALIDATION"},
		"producto ausente":  {"/api/products/3f0c9a52-6a1e-4f0e-9a43-5a8f3b1f0c11/stock", map[string]any{"movement_type": "in", "quantity": 1}, http.StatusNotFound, "NOT_FOUND"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, raw := env.call(t, http.MethodPost, tc.path, tc.body, "bodeguero")
			assert.Equal(t, tc.status, resp.StatusCode, string(raw))
			assert.Equal(t, tc.code, decode(t, raw)["code"])
		})
	}
}

func TestPedidoVenta_EntregaDescuentaStock(t *testing.T) {
	env := newTestEnv(t)
	productID := env.createProduct(t, "TOR-3", 10)

	resp, raw := env.call(t, http.MethodPost, "/api/orders", map[string]any{
		"order_type": "sale", "customer_name": "Ana",
		"items": []map[string]any{{"product_id": productID, "quantity": 3}},
	}, "vendedor")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	order := decode(t, raw)
	orderID := order["id"].(string)
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, "7.5", order["total_amount"])

	resp, raw = env.call(t, http.MethodPut, "/api/orders/"+orderID+"/status", map[string]any{"status": "delivered"}, "vendedor")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.NotNil(t, decode(t, raw)["actual_delivery_date"])

	_, raw = env.call(t, http.MethodGet, "/api/products/"+productID, nil, "vendedor")
	assert.EqualValues(t, 7, decode(t, raw)["stock_quantity"])

	resp, raw = env.call(t, http.MethodPut, "/api/orders/"+orderID+"/status", map[string]any{"status": "cancelled"}, "vendedor")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decode(t, raw)["code"])

	resp, raw = env.call(t, http.MethodGet, "/api/orders/"+orderID+"/pdf", nil, "vendedor")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".pdf")
}

func TestPedido_ItemsYRecalculo(t *testing.T) {
	env := newTestEnv(t)
	productID := env.createProduct(t, "TOR-4", 50)

	_, raw := env.call(t, http.MethodPost, "/api/orders", map[string]any{
		"order_type": "sale", "items": []map[string]any{{"product_id": productID, "quantity": 2}},
	}, "vendedor")
	orderID := decode(t, raw)["id"].(string)

	resp, raw := env.call(t, http.MethodPost, "/api/orders/"+orderID+"/items",
		map[string]any{"product_id": productID, "quantity": 4, "unit_price": "1.00"}, "vendedor")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	order := decode(t, raw)
	assert.Equal(t, "9", order["total_amount"])
	items := order["items"].([]any)
	require.Len(t, items, 2)
	itemID := items[1].(map[string]any)["id"].(string)

	resp, raw = env.call(t, http.MethodPut, "/api/orders/"+orderID+"/items/"+itemID, map[string]any{"quantity": 1}, "vendedor")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "6", decode(t, raw)["total_amount"])

	resp, raw = env.call(t, http.MethodDelete, "/api/orders/"+orderID+"/items/"+itemID, nil, "vendedor")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = env.call(t, http.MethodPost, "/api/orders/"+orderID+"/recompute", nil, "vendedor")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "5", decode(t, raw)["total_amount"])
}

func TestPedido_CompraSinProveedor400(t *testing.T) {
	env := newTestEnv(t)
	productID := env.createProduct(t, "TOR-5", 0)
	resp, raw := env.call(t, http.MethodPost, "/api/orders", map[string]any{
		"order_type": "purchase", "items": []map[string]any{{"product_id": productID, "quantity": 2}},
	}, "vendedor")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, raw)["code"])
}

func TestDelete_RequiereRolAdmin(t *testing.T) {
	env := newTestEnv(t)
	productID := env.createProduct(t, "TOR-6", 0)

	resp, raw := env.call(t, http.MethodDelete, "/api/products/"+productID, nil, "vendedor")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decode(t, raw)["code"])

	_, raw = env.call(t, http.MethodPost, "/api/orders", map[string]any{
		"order_type": "sale", "items": []map[string]any{{"product_id": productID, "quantity": 1}},
	}, "vendedor")
	orderID := decode(t, raw)["id"].(string)

	resp, raw = env.call(t, http.MethodDelete, "/api/products/"+productID, nil, "admin")
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))

	resp, _ = env.call(t, http.MethodDelete, "/api/orders/"+orderID, nil, "admin")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.call(t, http.MethodDelete, "/api/products/"+productID, nil, "admin")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = env.call(t, http.MethodGet, "/api/products/"+productID, nil, "admin")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Con stock inicial ya hay un movimiento en el ledger: no se puede borrar.
	stocked := env.createProduct(t, "TOR-8", 5)
	resp, raw = env.call(t, http.MethodDelete, "/api/products/"+stocked, nil, "admin")
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(raw))
	resp, raw = env.call(t, http.MethodGet, "/api/products/"+stocked+"/movements", nil, "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"movement_type":"in"`)
}

func TestReportes(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct(t, "TOR-7", 2)

	resp, raw := env.call(t, http.MethodGet, "/api/reports/dashboard", nil, "vendedor")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	dash := decode(t, raw)
	assert.EqualValues(t, 1, dash["total_products"])
	assert.EqualValues(t, 1, dash["low_stock_products"])

	resp, raw = env.call(t, http.MethodGet, "/api/reports/low-stock", nil, "vendedor")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var low []map[string]any
	require.NoError(t, json.Unmarshal(raw, &low))
	require.Len(t, low, 1)
	assert.EqualValues(t, 6, low[0]["suggested_order_qty"])

	resp, _ = env.call(t, http.MethodGet, "/api/reports/inventory-value", nil, "vendedor")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.call(t, http.MethodGet, "/api/reports/stock-movements?movement_type=in", nil, "vendedor")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.call(t, http.MethodGet, "/api/reports/orders?from=2026-01-01&to=2026-12-31", nil, "vendedor")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = env.call(t, http.MethodGet, "/api/reports/stock-movements?limit=5000", nil, "vendedor")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode(t, raw)["code"])
	resp, _ = env.call(t, http.MethodGet, "/api/reports/orders?from=2026-05-01&to=2026-04-01", nil, "vendedor")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestLogger_ObservaRutaPatron(t *testing.T) {
	env := newTestEnv(t)
	id := env.createProduct(t, "TOR-8", 0)
	env.call(t, http.MethodGet, "/api/products/"+id, nil, "vendedor")

	env.observer.mu.Lock()
	defer env.observer.mu.Unlock()
	assert.Contains(t, env.observer.routes, "GET /api/products/:id")
}
