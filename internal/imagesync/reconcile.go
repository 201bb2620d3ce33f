package imagesync

import (
	"context"
	"log/slog"
	"time"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/notify"
)

// startCycle resolves completion for one upload response. A later
// upload supersedes the cycle before it: the old reconciler is
// cancelled and its callback can no longer fire.
func (s *Session) startCycle(p catalog.Product) {
	s.mu.Lock()
	if s.cycle != nil {
		s.cycle.cancel()
	}
	cctx, cancel := context.WithCancel(s.ctx)
	c := &cycle{cancel: cancel}
	s.cycle = c
	s.mu.Unlock()

	if p.ImageProcessingStatus.Done() {
		// Server already reports a final state: fire inline, exactly
		// once, with no timer ever armed.
		s.fireOnce(cctx, c, p, "immediate")
		cancel()
		return
	}

	if s.feed != nil {
		s.wg.Add(1)
		go s.awaitPush(cctx, c)
		return
	}

	// Polling mode runs one loop for the whole session. A second upload
	// while the loop runs only swaps in a fresh cycle; the running loop
	// resolves whichever cycle is current when it lands.
	s.mu.Lock()
	if s.polling {
		s.mu.Unlock()
		return
	}
	s.polling = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.awaitPoll()
}

// awaitPush joins the product's status room and arms the fallback
// timer. Whichever signal lands first resolves the cycle; the select
// makes the loser inert, and teardown (ctx cancel) resolves nothing.
func (s *Session) awaitPush(ctx context.Context, c *cycle) {
	defer s.wg.Done()

	var events <-chan notify.StatusEvent
	sub, err := s.feed.Subscribe(ctx, s.productID)
	if err != nil {
		// Room unavailable: the fallback timer alone still resolves
		// the cycle, so this is survivable.
		s.log.LogAttrs(ctx, slog.LevelWarn, "status_subscribe_failed",
			slog.String("product_id", s.productID),
			slog.Any("err", err),
		)
	} else {
		defer sub.Close()
		events = sub.Events()
	}

	timer := time.NewTimer(s.timing.FallbackAfter)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				// Feed went away mid-wait; keep the timer armed.
				events = nil
				continue
			}
			if ev.ProductID != s.productID || !ev.Status.Done() {
				continue
			}
			s.resolve(ctx, c, "push")
			return

		case <-timer.C:
			// No definitive signal inside the window. Still actionable:
			// refetch and resolve best-effort rather than hang the form.
			s.resolve(ctx, c, "fallback_timer")
			return
		}
	}
}

// awaitPoll is the reconciler used when no push channel is available:
// a self-rescheduling poll with gentle backoff and a hard ceiling that
// force-resolves. It lives on the session context, not a cycle context,
// so a superseding upload never strands it.
func (s *Session) awaitPoll() {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.polling = false
		s.mu.Unlock()
	}()

	ctx := s.ctx

	deadline := time.Now().Add(s.timing.PollCeiling)
	delay := s.timing.PollInitial
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		p, err := s.client.GetProduct(ctx, s.productID)
		switch {
		case err != nil:
			// Transient; swallowed, the loop continues to the ceiling.
			s.log.LogAttrs(ctx, slog.LevelDebug, "status_poll_error",
				slog.String("product_id", s.productID),
				slog.Any("err", err),
			)
		case p.ImageProcessingStatus.Done():
			s.finish(ctx, s.currentCycle(), p, "poll")
			return
		}

		if time.Now().After(deadline) {
			s.resolve(ctx, s.currentCycle(), "poll_ceiling")
			return
		}

		delay = delay * 3 / 2
		if delay > s.timing.PollMax {
			delay = s.timing.PollMax
		}
		timer.Reset(delay)
	}
}

// resolve refetches the product and finishes the cycle. A failed
// refetch falls back to the last known record: resolution always
// happens, the UI is never left stuck.
func (s *Session) resolve(ctx context.Context, c *cycle, path string) {
	p, err := s.client.GetProduct(ctx, s.productID)
	if err != nil {
		s.log.LogAttrs(ctx, slog.LevelWarn, "status_refetch_failed",
			slog.String("product_id", s.productID),
			slog.String("path", path),
			slog.Any("err", err),
		)
		s.mu.Lock()
		p = s.product
		s.mu.Unlock()
	}
	s.finish(ctx, c, p, path)
}

func (s *Session) currentCycle() *cycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}

// finish folds the final product into the model and caches, then fires
// the completion callback. Nothing fires after teardown.
func (s *Session) finish(ctx context.Context, c *cycle, p catalog.Product, path string) {
	if c == nil || ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.product = p
	s.model.Rebuild(ctx, &p)
	s.mu.Unlock()

	s.syncCaches(ctx, p)
	s.fireOnce(ctx, c, p, path)
}

func (s *Session) fireOnce(ctx context.Context, c *cycle, p catalog.Product, path string) {
	c.once.Do(func() {
		s.log.LogAttrs(ctx, slog.LevelInfo, "image_processing_resolved",
			slog.String("product_id", s.productID),
			slog.String("status", string(p.ImageProcessingStatus)),
			slog.String("path", path),
		)
		if s.onProcessed == nil {
			return
		}
		if err := s.onProcessed(ctx, p); err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, "on_processed_failed",
				slog.String("product_id", s.productID),
				slog.String("path", path),
				slog.Any("err", err),
			)
		}
	})
}
