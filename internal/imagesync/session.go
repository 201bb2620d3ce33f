// Package imagesync owns the asynchronous product-image reconciliation:
// per-product edit sessions over the preview model, the upload and
// delete operations against the product service, and the completion
// signal reconciler that fires the autosave callback exactly once per
// upload cycle.
package imagesync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/listcache"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/notify"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/preview"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/storage"
)

// Timing tunes the reconciler. Zero values fall back to the dashboard
// defaults.
type Timing struct {
	FallbackAfter time.Duration // push fallback window
	PollInitial   time.Duration
	PollMax       time.Duration
	PollCeiling   time.Duration // hard ceiling; force-resolves
}

func (t Timing) withDefaults() Timing {
	if t.FallbackAfter <= 0 {
		t.FallbackAfter = 120 * time.Second
	}
	if t.PollInitial <= 0 {
		t.PollInitial = time.Second
	}
	if t.PollMax <= 0 {
		t.PollMax = 5 * time.Second
	}
	if t.PollCeiling <= 0 {
		t.PollCeiling = 2 * time.Minute
	}
	return t
}

// OnProcessed runs once per upload cycle when processing reaches a
// final state; the product carries that state, including "failed".
type OnProcessed func(ctx context.Context, p catalog.Product) error

type Config struct {
	ProductID   string
	Client      catalog.Client
	Cache       listcache.Store
	Feed        notify.Feed // nil selects the pure-polling reconciler
	Spool       storage.Storage
	Log         *slog.Logger
	OnProcessed OnProcessed
	Timing      Timing
}

// Session is one product's image edit session: the server-side analog
// of a mounted image manager component. Close is its teardown.
type Session struct {
	productID   string
	client      catalog.Client
	cache       listcache.Store
	feed        notify.Feed
	log         *slog.Logger
	onProcessed OnProcessed
	timing      Timing

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	model   *preview.Model
	product catalog.Product
	cycle   *cycle
	polling bool
	closed  bool
}

// cycle is one upload's completion tracking. The once-guard is what
// makes the racing push and timer paths fire the callback at most once.
type cycle struct {
	once   sync.Once
	cancel context.CancelFunc
}

// Open fetches the product and builds the session around it. Sessions
// cannot be opened for products that do not exist server-side yet.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	p, err := cfg.Client.GetProduct(ctx, cfg.ProductID)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, apperr.NotFoundErr("Product must be created before managing its images.")
	}

	sctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		productID:   cfg.ProductID,
		client:      cfg.Client,
		cache:       cfg.Cache,
		feed:        cfg.Feed,
		log:         cfg.Log,
		onProcessed: cfg.OnProcessed,
		timing:      cfg.Timing.withDefaults(),
		ctx:         sctx,
		cancel:      cancel,
		model:       preview.New(cfg.Spool),
		product:     p,
	}
	s.model.Rebuild(ctx, &p)
	return s, nil
}

func (s *Session) ProductID() string { return s.productID }

// Snapshot returns the current preview items and product status.
func (s *Session) Snapshot() ([]preview.Item, catalog.ProcessingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.Items(), s.product.ImageProcessingStatus
}

// SelectFiles spools newly chosen files into the preview model.
func (s *Session) SelectFiles(ctx context.Context, files []preview.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ConflictErr("Image session is closed.")
	}
	return s.model.AddFiles(ctx, files)
}

// RemoveLocal drops one not-yet-uploaded item.
func (s *Session) RemoveLocal(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ConflictErr("Image session is closed.")
	}
	return s.model.RemoveLocal(ctx, itemID)
}

// Refresh refetches the product and re-derives the preview model.
func (s *Session) Refresh(ctx context.Context) error {
	p, err := s.client.GetProduct(ctx, s.productID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.product = p
	s.model.Rebuild(ctx, &p)
	s.mu.Unlock()
	return nil
}

// DeleteImage removes one existing image through the server delete
// path. The last remaining image is protected; that check happens
// before any network call. On success the existing-image list is
// replaced wholesale from the server's answer, never patched in place.
func (s *Session) DeleteImage(ctx context.Context, imageURL string) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", apperr.ConflictErr("Image session is closed.")
	}
	if imageURL == "" {
		s.mu.Unlock()
		return "", apperr.InvalidErr("Image deletion URL missing.", nil)
	}
	if s.model.ExistingCount() <= 1 {
		s.mu.Unlock()
		return "", apperr.InvalidErr("A product must have at least one image.", nil)
	}
	s.mu.Unlock()

	p, msg, err := s.client.DeleteImage(ctx, s.productID, imageURL)
	if err != nil {
		// Nothing was changed optimistically, so nothing rolls back.
		return "", surface(err, "Failed to delete image.")
	}

	s.mu.Lock()
	s.product = p
	s.model.Rebuild(ctx, &p)
	s.mu.Unlock()

	s.syncCaches(ctx, p)
	return msg, nil
}

// UploadBatch pushes every pending local file to the product service
// and starts a completion cycle for the response. Items flip to
// uploading before the request leaves, so observed state never lags
// the wire.
func (s *Session) UploadBatch(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", apperr.ConflictErr("Image session is closed.")
	}
	var batchIDs []string
	var handles []*preview.Handle
	for _, it := range s.model.Items() {
		if !it.IsExisting && it.Handle() != nil {
			batchIDs = append(batchIDs, it.ID)
			handles = append(handles, it.Handle())
		}
	}
	if len(batchIDs) == 0 {
		s.mu.Unlock()
		return "", apperr.InvalidErr("Please select images to upload.", nil)
	}
	s.model.MarkUploading(batchIDs)
	s.mu.Unlock()

	uploads := make([]catalog.Upload, 0, len(handles))
	var readers []interface{ Close() error }
	for _, h := range handles {
		rc, err := h.Open(ctx)
		if err != nil {
			s.mu.Lock()
			s.model.FailUploading()
			s.mu.Unlock()
			closeAll(readers)
			return "", apperr.Wrap(err)
		}
		readers = append(readers, rc)
		uploads = append(uploads, catalog.Upload{
			Name:        h.Name(),
			ContentType: h.ContentType(),
			Reader:      rc,
		})
	}

	p, msg, err := s.client.UploadImages(ctx, s.productID, uploads)
	closeAll(readers)
	if err != nil {
		s.mu.Lock()
		s.model.FailUploading()
		s.mu.Unlock()
		return "", surface(err, "Failed to upload images.")
	}

	s.mu.Lock()
	s.product = p
	s.model.MergeAfterUpload(ctx, &p, batchIDs)
	s.mu.Unlock()

	s.syncCaches(ctx, p)
	s.startCycle(p)
	return msg, nil
}

// Close tears the session down: any awaiting reconciler stops without
// firing, the push room is left, and every live spool handle releases
// exactly once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cycle != nil {
		s.cycle.cancel()
		s.cycle = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.model.Close(context.Background())
	s.mu.Unlock()
}

func (s *Session) syncCaches(ctx context.Context, p catalog.Product) {
	patched, err := listcache.Upsert(ctx, s.cache, p)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "cache_upsert_failed",
			slog.String("product_id", s.productID),
			slog.Any("err", err),
		)
		return
	}
	if !patched {
		// No cached page held this product; coarse refetch path.
		if err := s.cache.InvalidateLists(ctx); err != nil {
			s.log.LogAttrs(ctx, slog.LevelWarn, "cache_invalidate_failed",
				slog.String("product_id", s.productID),
				slog.Any("err", err),
			)
		}
	}
}

func surface(err error, fallback string) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.UnavailableErr(fallback, err)
}

func closeAll(readers []interface{ Close() error }) {
	for _, r := range readers {
		_ = r.Close()
	}
}
