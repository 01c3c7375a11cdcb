// Package memory implementa los puertos de persistencia en proceso. Cada unidad atómica
// trabaja sobre una copia del estado y solo la publica si termina sin error, así que una
// falla a mitad de camino no deja nada escrito. Sirve al modo DB_DRIVER=memory y a los tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/ordering"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ ordering.TxRunner  = (*Store)(nil)
)

// Store estado compartido. mu serializa las transacciones entre sí y con las lecturas.
type Store struct {
	mu         sync.Mutex
	st         *state
	failCommit error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

type state struct {
	products  map[string]*entity.Product
	suppliers map[string]*entity.Supplier
	orders    map[string]*entity.Order
	movements []*entity.StockMovement
}

func newState() *state {
	return &state{
		products:  make(map[string]*entity.Product),
		suppliers: make(map[string]*entity.Supplier),
		orders:    make(map[string]*entity.Order),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, p := range s.products {
		c.products[id] = copyProduct(p)
	}
	for id, sp := range s.suppliers {
		cp := *sp
		c.suppliers[id] = &cp
	}
	for id, o := range s.orders {
		c.orders[id] = copyOrder(o)
	}
	c.movements = make([]*entity.StockMovement, len(s.movements))
	copy(c.movements, s.movements) // los movimientos son inmutables
	return c
}

// handle da a los repositorios acceso al estado: el de la transacción si existe,
// o el publicado bajo el mutex del store.
type handle struct {
	store *Store
	tx    *state
}

func (h *handle) read(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.st)
}

// write en modo autocommit trabaja sobre una copia para que un error no deje cambios a medias.
func (h *handle) write(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	work := h.store.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	h.store.st = work
	return nil
}

// transact ejecuta fn sobre una copia del estado y la publica solo si fn termina sin error.
// El lock se libera con defer: un panic dentro de fn descarta la copia y no deja el store bloqueado.
func (s *Store) transact(ctx context.Context, fn func(h *handle) error) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapPersistence("begin transaction", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&handle{store: s, tx: work}); err != nil {
		return domain.WrapPersistence("memory tx", err)
	}
	if s.failCommit != nil {
		cerr := s.failCommit
		s.failCommit = nil
		return &domain.PersistenceError{Op: "commit transaction", Err: cerr}
	}
	s.st = work
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.transact(ctx, func(h *handle) error {
		return fn(&MovementRepo{h: h}, &ProductRepo{h: h})
	})
}

// RunOrders implementa ordering.TxRunner.
func (s *Store) RunOrders(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return s.transact(ctx, func(h *handle) error {
		return fn(&MovementRepo{h: h}, &ProductRepo{h: h}, &OrderRepo{h: h})
	})
}

// FailNextCommit hace fallar el próximo commit con err (simula caída de la BD en tests).
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommit = err
}

// Repositorios fuera de transacción (autocommit).

func (s *Store) Products() *ProductRepo { return &ProductRepo{h: &handle{store: s}} }
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{h: &handle{store: s}} }
func (s *Store) Orders() *OrderRepo { return &OrderRepo{h: &handle{store: s}} }
func (s *Store) Movements() *MovementRepo { return &MovementRepo{h: &handle{store: s}} }
func (s *Store) Reports() *ReportRepo { return &ReportRepo{h: &handle{store: s}} }

func copyProduct(p *entity.Product) *entity.Product {
	cp := *p
	return &cp
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = make([]*entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		ic := *it
		cp.Items[i] = &ic
	}
	return &cp
}

func page[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return []T{}
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
