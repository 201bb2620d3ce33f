package listcache

import (
	"context"
	"sync"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
)

// Memory is the default store when no Redis address is configured.
// A single generation counter covers all listing pages: any targeted
// write or invalidation advances it, which drops every fill still in
// flight.
type Memory struct {
	mu       sync.Mutex
	gen      uint64
	pages    map[string]catalog.ListPage
	keys     map[string]PageKey
	products map[string]catalog.Product
}

func NewMemory() *Memory {
	return &Memory{
		pages:    map[string]catalog.ListPage{},
		keys:     map[string]PageKey{},
		products: map[string]catalog.Product{},
	}
}

func (m *Memory) GetPage(ctx context.Context, key PageKey) (catalog.ListPage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	page, ok := m.pages[key.String()]
	return page, ok, nil
}

func (m *Memory) PageKeys(ctx context.Context) ([]PageKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PageKey, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, k)
	}
	return out, nil
}

func (m *Memory) FillStart(ctx context.Context, key PageKey) (FillToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return FillToken{Key: key, gen: m.gen}, nil
}

func (m *Memory) FillComplete(ctx context.Context, tok FillToken, page catalog.ListPage) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tok.gen != m.gen {
		return false, nil
	}
	m.pages[tok.Key.String()] = page
	m.keys[tok.Key.String()] = tok.Key
	return true, nil
}

func (m *Memory) ReplacePage(ctx context.Context, key PageKey, page catalog.ListPage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.pages[key.String()] = page
	m.keys[key.String()] = key
	return nil
}

func (m *Memory) InvalidateLists(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.pages = map[string]catalog.ListPage{}
	m.keys = map[string]PageKey{}
	return nil
}

func (m *Memory) GetProduct(ctx context.Context, id string) (catalog.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	return p, ok, nil
}

func (m *Memory) SetProduct(ctx context.Context, p catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

func (m *Memory) InvalidateProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}
