// Package memory implementa los puertos del inventario en memoria: bloqueo exclusivo por
// producto y escrituras diferidas que se aplican juntas al hacer commit. Se usa en desarrollo
// (STORE_DRIVER=memory) y en los tests de casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado compartido. mu protege los mapas; locks serializa ajustes del mismo producto.
type Store struct {
	mu           sync.RWMutex
	products     map[string]*entity.Product
	categories   map[string]*entity.Category
	transactions []*entity.StockTransaction
	alerts       []*entity.StockAlert
	settings     []*entity.StockSettings
	locks        *keyedLocker
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		categories: make(map[string]*entity.Category),
		locks:      newKeyedLocker(),
	}
}

// AddCategory registra una categoría (catálogo).
func (s *Store) AddCategory(c entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = &c
}

// AddProduct registra un producto (catálogo).
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Transactions repositorio del libro fuera de transacción.
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Alerts repositorio de alertas fuera de transacción.
func (s *Store) Alerts() *AlertRepo { return &AlertRepo{s: s} }

// Settings repositorio del singleton de configuración.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{s: s} }

// Reports repositorio de agregados.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

// Run ejecuta fn en una unidad atómica. Las escrituras se acumulan y se aplican juntas si fn
// devuelve nil; los bloqueos de producto tomados con GetForUpdate se liberan al terminar.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	txRepo repository.StockTransactionRepository,
	alertRepo repository.StockAlertRepository,
) error) error {
	t := &memTx{s: s, held: map[string]bool{}, stock: map[string]int{}}
	defer t.release()

	if err := fn(&txProductRepo{t: t}, &txTransactionRepo{t: t}, &txAlertRepo{t: t}); err != nil {
		return err
	}
	t.commit()
	return nil
}

// memTx transacción en curso.
type memTx struct {
	s     *Store
	held  map[string]bool
	stock map[string]int // stock escrito en esta tx, por producto
	ops   []func(s *Store)
}

func (t *memTx) lock(ctx context.Context, productID string) error {
	if t.held[productID] {
		return nil
	}
	if err := t.s.locks.Lock(ctx, productID); err != nil {
		return err
	}
	t.held[productID] = true
	return nil
}

func (t *memTx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, op := range t.ops {
		op(t.s)
	}
	t.ops = nil
}

func (t *memTx) release() {
	for id := range t.held {
		t.s.locks.Unlock(id)
	}
	t.held = nil
}

func (t *memTx) stage(op func(s *Store)) { t.ops = append(t.ops, op) }

// keyedLocker mutex exclusivo por clave; Lock respeta la cancelación del contexto.
type keyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func newKeyedLocker() *keyedLocker {
	return &keyedLocker{locks: make(map[string]*keyLock)}
}

func (k *keyedLocker) Lock(ctx context.Context, key string) error {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
		return ctx.Err()
	}
}

func (k *keyedLocker) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
	<-l.ch
}

func copyProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func copyTransaction(t *entity.StockTransaction) *entity.StockTransaction {
	c := *t
	return &c
}

func copyAlert(a *entity.StockAlert) *entity.StockAlert {
	c := *a
	return &c
}

func sortProducts(list []*entity.Product) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Stock != list[j].Stock {
			return list[i].Stock < list[j].Stock
		}
		return list[i].Title < list[j].Title
	})
}
