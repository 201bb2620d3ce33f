// Package preview derives the image grid shown in the product form from
// two inputs: the server product's renditions and the admin's locally
// selected, not-yet-uploaded files.
package preview

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/storage"
)

type Status string

const (
	StatusLocalPending Status = "local_pending_upload"
	StatusUploading    Status = "uploading"
	StatusProcessing   Status = "remote_processing"
	StatusReady        Status = "remote_completed"
	StatusFailed       Status = "failed"
)

// MaxImages caps the grid; the product service enforces the same limit.
const MaxImages = 5

const placeholderURL = "/placeholder.svg"

// Item is one slot in the image grid.
type Item struct {
	ID          string
	DisplayURL  string
	Status      Status
	IsExisting  bool
	DeletionURL string

	handle *Handle // nil for existing (remote) items
}

// Handle returns the spool handle backing a local item, nil otherwise.
func (it Item) Handle() *Handle { return it.handle }

// File is one admin-selected file heading into the spool.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Model holds the ordered item list. It is not synchronized; the owning
// session serializes access.
type Model struct {
	spool storage.Storage
	items []Item
}

func New(spool storage.Storage) *Model {
	return &Model{spool: spool}
}

func (m *Model) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Model) Count() int { return len(m.items) }

func (m *Model) ExistingCount() int {
	n := 0
	for _, it := range m.items {
		if it.IsExisting {
			n++
		}
	}
	return n
}

// LocalFiles returns the handles of the remaining local items, in grid
// order. This is the list the product form's file field is kept in sync
// with.
func (m *Model) LocalFiles() []*Handle {
	var out []*Handle
	for _, it := range m.items {
		if !it.IsExisting && it.handle != nil {
			out = append(out, it.handle)
		}
	}
	return out
}

// Rebuild re-derives the item list after the server product changed.
// Remote items are rebuilt wholesale from the product's renditions;
// local-only items are kept, minus any whose URL now duplicates a
// remote one (that item just finished uploading, so its spool copy is
// released).
func (m *Model) Rebuild(ctx context.Context, p *catalog.Product) {
	remote := dedupeByURL(remoteItems(p))

	remoteURLs := make(map[string]bool, len(remote))
	for _, r := range remote {
		remoteURLs[r.DisplayURL] = true
	}

	merged := remote
	for _, it := range m.items {
		if it.IsExisting {
			continue
		}
		if remoteURLs[it.DisplayURL] {
			m.release(ctx, it)
			continue
		}
		merged = append(merged, it)
	}

	m.items = m.truncate(ctx, merged)
}

// AddFiles spools newly selected files. The batch is rejected in full
// when it would push the grid past MaxImages.
func (m *Model) AddFiles(ctx context.Context, files []File) error {
	if len(files) == 0 {
		return nil
	}
	if len(m.items)+len(files) > MaxImages {
		return apperr.InvalidErr(fmt.Sprintf("You can only have a maximum of %d images.", MaxImages), nil)
	}

	added := make([]Item, 0, len(files))
	for _, f := range files {
		res, err := m.spool.Put(ctx, f.Reader, storage.PutInput{
			Filename:    f.Name,
			ContentType: f.ContentType,
			Size:        f.Size,
		})
		if err != nil {
			// No partial acceptance: drop what was already spooled.
			for _, it := range added {
				m.release(ctx, it)
			}
			return apperr.Wrap(fmt.Errorf("spooling %s: %w", f.Name, err))
		}
		h := newHandle(m.spool, res, f.Name, f.ContentType)
		added = append(added, Item{
			ID:         "local-" + uuid.NewString(),
			DisplayURL: h.URL(),
			Status:     StatusLocalPending,
			handle:     h,
		})
	}

	m.items = append(m.items, added...)
	return nil
}

// RemoveLocal drops a local item and releases its spool object.
// Existing images never leave through here; they go through the server
// delete path.
func (m *Model) RemoveLocal(ctx context.Context, id string) error {
	for i, it := range m.items {
		if it.ID != id {
			continue
		}
		if it.IsExisting {
			return apperr.InvalidErr("Existing images can only be removed via delete.", nil)
		}
		m.release(ctx, it)
		m.items = append(m.items[:i], m.items[i+1:]...)
		return nil
	}
	return apperr.NotFoundErr("No such image in the preview.")
}

// MarkUploading flips the given local items to uploading. Called before
// the network request goes out so state never lags the wire.
func (m *Model) MarkUploading(ids []string) {
	set := toSet(ids)
	for i := range m.items {
		if !m.items[i].IsExisting && set[m.items[i].ID] {
			m.items[i].Status = StatusUploading
		}
	}
}

// FailUploading marks every in-flight item failed after an upload error.
func (m *Model) FailUploading() {
	for i := range m.items {
		if m.items[i].Status == StatusUploading {
			m.items[i].Status = StatusFailed
		}
	}
}

// MergeAfterUpload rebuilds the grid from the server's post-upload
// product. Local items that were part of the batch are released (the
// server owns their bytes now); local items outside the batch are kept
// as still-local, which is normally an empty set.
func (m *Model) MergeAfterUpload(ctx context.Context, p *catalog.Product, uploadedIDs []string) {
	uploaded := toSet(uploadedIDs)

	var leftovers []Item
	for _, it := range m.items {
		if it.IsExisting {
			continue
		}
		if uploaded[it.ID] {
			m.release(ctx, it)
			continue
		}
		it.Status = StatusLocalPending
		leftovers = append(leftovers, it)
	}

	remote := dedupeByURL(remoteItems(p))
	m.items = m.truncate(ctx, append(remote, leftovers...))
}

// Close releases every live spool handle. Safe to call alongside or
// after individual removes; each handle releases at most once.
func (m *Model) Close(ctx context.Context) {
	for _, it := range m.items {
		m.release(ctx, it)
	}
	m.items = nil
}

func (m *Model) release(ctx context.Context, it Item) {
	if it.handle != nil {
		_ = it.handle.Release(ctx)
	}
}

func (m *Model) truncate(ctx context.Context, items []Item) []Item {
	if len(items) <= MaxImages {
		return items
	}
	for _, it := range items[MaxImages:] {
		m.release(ctx, it)
	}
	return items[:MaxImages]
}

// remoteItems builds one item per rendition entry, in server order. An
// entry still missing both thumbnail and medium while the product is
// pending renders as processing.
func remoteItems(p *catalog.Product) []Item {
	if p == nil {
		return nil
	}
	items := make([]Item, 0, len(p.ImageRenditions))
	for i, r := range p.ImageRenditions {
		var fallback string
		if i < len(p.ImageURLs) {
			fallback = p.ImageURLs[i]
		}
		display := pickDisplayURL(r, fallback)

		status := StatusReady
		if p.ImageProcessingStatus == catalog.StatusPending && r.Thumbnail == "" && r.Medium == "" {
			status = StatusProcessing
		}

		deletion := fallback
		if deletion == "" {
			deletion = display
		}

		items = append(items, Item{
			ID:          fmt.Sprintf("remote-%d-%s", i, display),
			DisplayURL:  display,
			Status:      status,
			IsExisting:  true,
			DeletionURL: deletion,
		})
	}
	return items
}

// pickDisplayURL prefers the smallest useful rendition.
func pickDisplayURL(r catalog.Rendition, fallback string) string {
	switch {
	case r.Thumbnail != "":
		return r.Thumbnail
	case r.Medium != "":
		return r.Medium
	case r.Original != "":
		return r.Original
	case fallback != "":
		return fallback
	default:
		return placeholderURL
	}
}

// dedupeByURL keeps the first occurrence of each display URL. Guards
// against a pathological server response repeating an image.
func dedupeByURL(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it.DisplayURL] {
			continue
		}
		seen[it.DisplayURL] = true
		out = append(out, it)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
