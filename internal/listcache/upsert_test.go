package listcache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
)

func prod(id, name string) catalog.Product {
	return catalog.Product{
		ID:         id,
		Name:       name,
		Currency:   "EUR",
		Category:   "tools",
		PriceCents: 1000,
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func pageOf(products ...catalog.Product) catalog.ListPage {
	return catalog.ListPage{Products: products, Page: 1, TotalPages: 1, TotalCount: len(products)}
}

func fill(t *testing.T, store Store, key PageKey, page catalog.ListPage) {
	t.Helper()
	ctx := context.Background()
	tok, err := store.FillStart(ctx, key)
	if err != nil {
		t.Fatalf("FillStart: %v", err)
	}
	stored, err := store.FillComplete(ctx, tok, page)
	if err != nil {
		t.Fatalf("FillComplete: %v", err)
	}
	if !stored {
		t.Fatal("fill unexpectedly dropped")
	}
}

func TestUpsert_PatchesEveryPageHoldingTheProduct(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	keyAll := PageKey{Page: 1, PerPage: 20}
	keyTools := PageKey{Category: "tools", Page: 1, PerPage: 20}
	keyOther := PageKey{Category: "other", Page: 1, PerPage: 20}

	fill(t, store, keyAll, pageOf(prod("p1", "Old"), prod("p2", "Two")))
	fill(t, store, keyTools, pageOf(prod("p1", "Old")))
	fill(t, store, keyOther, pageOf(prod("p3", "Three")))

	updated := prod("p1", "New")
	updated.ImageProcessingStatus = catalog.StatusCompleted

	patched, err := Upsert(ctx, store, updated)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !patched {
		t.Fatal("expected at least one page patched")
	}

	for _, key := range []PageKey{keyAll, keyTools} {
		page, ok, _ := store.GetPage(ctx, key)
		if !ok {
			t.Fatalf("page %s should still be cached", key)
		}
		found := false
		for _, p := range page.Products {
			if p.ID == "p1" {
				found = true
				if p.Name != "New" || p.ImageProcessingStatus != catalog.StatusCompleted {
					t.Errorf("page %s holds a stale copy: %+v", key, p)
				}
			}
		}
		if !found {
			t.Errorf("page %s lost the product", key)
		}
	}

	// The unrelated page is untouched.
	page, ok, _ := store.GetPage(ctx, keyOther)
	if !ok || page.Products[0].Name != "Three" {
		t.Error("unrelated page should be untouched")
	}

	// By-id slot is written unconditionally.
	got, ok, _ := store.GetProduct(ctx, "p1")
	if !ok || got.Name != "New" {
		t.Errorf("by-id slot not updated: %+v", got)
	}
}

func TestUpsert_NoMatchReturnsFalse(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	fill(t, store, PageKey{Page: 1, PerPage: 20}, pageOf(prod("p2", "Two")))

	patched, err := Upsert(ctx, store, prod("p1", "One"))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if patched {
		t.Error("no page holds p1, patched should be false")
	}

	// The by-id slot is still written.
	if _, ok, _ := store.GetProduct(ctx, "p1"); !ok {
		t.Error("by-id slot should be written even without a page match")
	}
}

func TestUpsert_NeverMutatesPagesAlreadyHandedToReaders(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := PageKey{Page: 1, PerPage: 20}
	fill(t, store, key, pageOf(prod("p1", "Old")))

	// A reader snapshot taken before the patch lands.
	before, _, _ := store.GetPage(ctx, key)

	if _, err := Upsert(ctx, store, prod("p1", "New")); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if before.Products[0].Name != "Old" {
		t.Error("a page already handed out must not change under the reader")
	}
	after, _, _ := store.GetPage(ctx, key)
	if after.Products[0].Name != "New" {
		t.Error("the stored page should carry the patch")
	}
}

// Run with -race: handlers serialize cached pages while reconciler
// goroutines patch the same key.
func TestUpsert_ConcurrentWithPageReaders(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := PageKey{Page: 1, PerPage: 20}
	fill(t, store, key, pageOf(prod("p1", "Old"), prod("p2", "Two")))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			page, ok, err := store.GetPage(ctx, key)
			if err != nil || !ok {
				continue
			}
			if _, err := json.Marshal(page); err != nil {
				t.Errorf("marshal: %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := Upsert(ctx, store, prod("p1", "New")); err != nil {
				t.Errorf("Upsert: %v", err)
				return
			}
		}
	}()
	wg.Wait()
}

func TestMergeProduct_KeepsCachedFieldsTheServiceOmits(t *testing.T) {
	old := prod("p1", "Old")
	fresh := catalog.Product{ID: "p1", Name: "New"}

	merged := mergeProduct(old, fresh)
	if merged.Name != "New" {
		t.Errorf("fresh fields must win, got %q", merged.Name)
	}
	if merged.Currency != "EUR" || merged.Category != "tools" {
		t.Errorf("omitted fields must keep cached values, got %+v", merged)
	}
	if merged.CreatedAt.IsZero() {
		t.Error("zero CreatedAt must keep the cached timestamp")
	}
}
