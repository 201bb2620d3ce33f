package catalog

import (
	"context"
	"sync"
)

// Mock is an in-memory Client for tests and local tooling.
type Mock struct {
	mu sync.Mutex

	Products map[string]Product
	Pages    ListPage
	Message  string

	// per-call error overrides
	GetErr    error
	ListErr   error
	UploadErr error
	DeleteErr error
	UpdateErr error

	// OnUpload, when set, computes the post-upload product.
	OnUpload func(id string, files []Upload) Product
	// OnDelete, when set, computes the post-delete product.
	OnDelete func(id, imageURL string) Product

	GetCalls    int
	ListCalls   int
	UploadCalls int
	DeleteCalls int
	UpdateCalls []UpdateInput
}

func NewMock() *Mock {
	return &Mock{Products: map[string]Product{}}
}

func (m *Mock) SetProduct(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Products[p.ID] = p
}

func (m *Mock) GetProduct(ctx context.Context, id string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return Product{}, m.GetErr
	}
	return m.Products[id], nil
}

func (m *Mock) ListProducts(ctx context.Context, q ListQuery) (ListPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.ListErr != nil {
		return ListPage{}, m.ListErr
	}
	return m.Pages, nil
}

func (m *Mock) UploadImages(ctx context.Context, id string, files []Upload) (Product, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UploadCalls++
	if m.UploadErr != nil {
		return Product{}, "", m.UploadErr
	}
	p := m.Products[id]
	if m.OnUpload != nil {
		p = m.OnUpload(id, files)
		m.Products[id] = p
	}
	return p, m.Message, nil
}

func (m *Mock) DeleteImage(ctx context.Context, id, imageURL string) (Product, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	if m.DeleteErr != nil {
		return Product{}, "", m.DeleteErr
	}
	p := m.Products[id]
	if m.OnDelete != nil {
		p = m.OnDelete(id, imageURL)
		m.Products[id] = p
	}
	return p, m.Message, nil
}

func (m *Mock) UpdateProduct(ctx context.Context, id string, in UpdateInput) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, in)
	if m.UpdateErr != nil {
		return Product{}, m.UpdateErr
	}
	return m.Products[id], nil
}
