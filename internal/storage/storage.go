// Package storage is the spool for admin-selected files that have not
// been pushed to the product service yet. A spooled object is the
// server-side analog of a browser blob URL: short-lived, owned by
// exactly one preview item, read back once at upload time.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/slug"
)

type PutInput struct {
	Filename    string
	ContentType string
	Size        int64
}

type PutResult struct {
	Key string
	URL string
}

type Storage interface {
	Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// spoolKey keeps the original name readable in the key while a uuid
// makes it unique.
func spoolKey(filename, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	s := slug.FromName(base)
	if len(s) > 40 {
		s = s[:40]
	}
	return s + "-" + uuid.NewString() + ext
}
