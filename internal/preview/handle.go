package preview

import (
	"context"
	"io"
	"sync"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/storage"
)

// Handle owns one spooled file. Each handle is owned by exactly one
// preview item; Release drops the spool object and is safe to call more
// than once (every call after the first is a no-op).
type Handle struct {
	spool       storage.Storage
	key         string
	url         string
	name        string
	contentType string

	once     sync.Once
	released bool
}

func newHandle(spool storage.Storage, res storage.PutResult, name, contentType string) *Handle {
	return &Handle{
		spool:       spool,
		key:         res.Key,
		url:         res.URL,
		name:        name,
		contentType: contentType,
	}
}

func (h *Handle) URL() string         { return h.url }
func (h *Handle) Name() string        { return h.name }
func (h *Handle) ContentType() string { return h.contentType }

func (h *Handle) Open(ctx context.Context) (io.ReadCloser, error) {
	return h.spool.Open(ctx, h.key)
}

func (h *Handle) Release(ctx context.Context) error {
	var err error
	h.once.Do(func() {
		h.released = true
		err = h.spool.Delete(ctx, h.key)
	})
	return err
}

// Released reports whether Release has run. Tests use it to assert the
// exactly-once lifecycle.
func (h *Handle) Released() bool { return h.released }
