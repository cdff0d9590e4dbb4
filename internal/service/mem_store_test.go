package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/service"

	"github.com/google/uuid"
)

// memStore: хранилище в памяти с семантикой условного списания.
// Транзакции сериализуются мьютексом и применяются к копии состояния.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	variants map[uuid.UUID]models.ProductVariant
	orders   map[uuid.UUID]models.Order

	batchCalls int
	// beforeTx вызывается до захвата мьютекса; удобно для барьеров в тестах.
	beforeTx func()
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]models.Product{},
		variants: map[uuid.UUID]models.ProductVariant{},
		orders:   map[uuid.UUID]models.Order{},
	}
}

func (m *memStore) addProduct(name string, priceCents int64, stock int32) models.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Product{ID: uuid.New(), CategoryID: uuid.New(), Name: name, PriceCents: priceCents, Stock: stock}
	m.products[p.ID] = p
	return p
}

func (m *memStore) addVariant(productID uuid.UUID, size string, stock int32) models.ProductVariant {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := models.ProductVariant{ID: uuid.New(), ProductID: productID, SizeType: models.SizeStandard, SizeValue: size, Stock: stock}
	m.variants[v.ID] = v
	return v
}

func (m *memStore) productStock(id uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memStore) variantStock(id uuid.UUID) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.variants[id].Stock
}

func (m *memStore) setPrice(id uuid.UUID, cents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.products[id]
	p.PriceCents = cents
	m.products[id] = p
}

func (m *memStore) setVariantStock(id uuid.UUID, stock int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.variants[id]
	v.Stock = stock
	m.variants[id] = v
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func (m *memStore) order(id uuid.UUID) models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memStore) BatchGetProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) BatchGetVariants(ctx context.Context, ids []uuid.UUID) ([]models.ProductVariant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	out := []models.ProductVariant{}
	for _, id := range ids {
		if v, ok := m.variants[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memStore) InTx(ctx context.Context, fn func(tx service.CheckoutTx) error) error {
	if m.beforeTx != nil {
		m.beforeTx()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		products: make(map[uuid.UUID]models.Product, len(m.products)),
		variants: make(map[uuid.UUID]models.ProductVariant, len(m.variants)),
		orders:   map[uuid.UUID]models.Order{},
	}
	for k, v := range m.products {
		tx.products[k] = v
	}
	for k, v := range m.variants {
		tx.variants[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}
	// отмена до коммита откатывает всё
	if err := ctx.Err(); err != nil {
		return err
	}

	m.products = tx.products
	m.variants = tx.variants
	for id, o := range tx.orders {
		m.orders[id] = o
	}
	return nil
}

type memTx struct {
	products map[uuid.UUID]models.Product
	variants map[uuid.UUID]models.ProductVariant
	orders   map[uuid.UUID]models.Order
}

func (t *memTx) DecrementVariantStock(ctx context.Context, productID, variantID uuid.UUID, qty int32) (bool, error) {
	v, ok := t.variants[variantID]
	if !ok || v.ProductID != productID || v.Stock < qty {
		return false, nil
	}
	v.Stock -= qty
	t.variants[variantID] = v
	return true, nil
}

func (t *memTx) DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int32) (bool, error) {
	p, ok := t.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	t.products[productID] = p
	return true, nil
}

func (t *memTx) CreateOrder(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	o.ID = uuid.New()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	stored := *o
	stored.Items = make([]models.OrderItem, len(items))
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = o.ID
		stored.Items[i] = items[i]
	}
	t.orders[o.ID] = stored
	return nil
}

func (t *memTx) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := t.orders[id]
	if !ok {
		return nil, nil
	}
	out := o
	out.Items = make([]models.OrderItem, len(o.Items))
	for i, it := range o.Items {
		p := t.products[it.ProductID]
		it.Product = &p
		if it.VariantID != nil {
			v := t.variants[*it.VariantID]
			it.Variant = &v
		}
		out.Items[i] = it
	}
	sort.SliceStable(out.Items, func(i, j int) bool { return out.Items[i].Position < out.Items[j].Position })
	return &out, nil
}

// recordingNotifier запоминает письма; err: ошибка, которую надо вернуть.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  []service.Notification
	err   error
	block chan struct{}
	ctxOK []bool
}

func (n *recordingNotifier) Notify(ctx context.Context, msg service.Notification) error {
	if n.block != nil {
		<-n.block
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ctxOK = append(n.ctxOK, ctx.Err() == nil)
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) messages() []service.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]service.Notification(nil), n.sent...)
}
