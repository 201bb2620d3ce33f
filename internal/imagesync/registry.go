package imagesync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/listcache"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/notify"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/storage"
)

// Deps is the per-process wiring shared by every session.
type Deps struct {
	Client      catalog.Client
	Cache       listcache.Store
	Feed        notify.Feed
	Spool       storage.Storage
	Log         *slog.Logger
	OnProcessed OnProcessed
	Timing      Timing
}

// Registry tracks at most one open session per product.
type Registry struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:     deps,
		sessions: map[string]*Session{},
	}
}

// Open returns the product's session, creating it on first use.
func (r *Registry) Open(ctx context.Context, productID string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[productID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	s, err := Open(ctx, Config{
		ProductID:   productID,
		Client:      r.deps.Client,
		Cache:       r.deps.Cache,
		Feed:        r.deps.Feed,
		Spool:       r.deps.Spool,
		Log:         r.deps.Log,
		OnProcessed: r.deps.OnProcessed,
		Timing:      r.deps.Timing,
	})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[productID]; ok {
		// Lost the race to another request; keep the first session.
		go s.Close()
		return existing, nil
	}
	r.sessions[productID] = s
	return s, nil
}

func (r *Registry) Get(productID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[productID]
	if !ok {
		return nil, apperr.NotFoundErr("No open image session for this product.")
	}
	return s, nil
}

// Close tears down one product's session.
func (r *Registry) Close(productID string) {
	r.mu.Lock()
	s, ok := r.sessions[productID]
	delete(r.sessions, productID)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll runs at server shutdown so no spool object outlives the
// process and no reconciler fires into the void.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
