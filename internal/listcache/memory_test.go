package listcache

import (
	"context"
	"testing"
)

func TestMemory_FillDroppedAfterConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := PageKey{Page: 1, PerPage: 20}

	tok, err := store.FillStart(ctx, key)
	if err != nil {
		t.Fatalf("FillStart: %v", err)
	}

	// A targeted write lands while the fill's upstream fetch is running.
	if err := store.ReplacePage(ctx, key, pageOf(prod("p1", "Fresh"))); err != nil {
		t.Fatalf("ReplacePage: %v", err)
	}

	stored, err := store.FillComplete(ctx, tok, pageOf(prod("p1", "Stale")))
	if err != nil {
		t.Fatalf("FillComplete: %v", err)
	}
	if stored {
		t.Fatal("fill started before the write must be dropped")
	}

	page, ok, _ := store.GetPage(ctx, key)
	if !ok || page.Products[0].Name != "Fresh" {
		t.Errorf("the targeted write must survive, got %+v", page)
	}
}

func TestMemory_FillDroppedAfterInvalidation(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := PageKey{Page: 1, PerPage: 20}

	tok, _ := store.FillStart(ctx, key)
	if err := store.InvalidateLists(ctx); err != nil {
		t.Fatalf("InvalidateLists: %v", err)
	}

	stored, err := store.FillComplete(ctx, tok, pageOf(prod("p1", "Stale")))
	if err != nil {
		t.Fatalf("FillComplete: %v", err)
	}
	if stored {
		t.Fatal("fill started before the invalidation must be dropped")
	}
	if _, ok, _ := store.GetPage(ctx, key); ok {
		t.Error("nothing should be cached")
	}
}

func TestMemory_InvalidateListsKeepsProductSlots(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.SetProduct(ctx, prod("p1", "One")); err != nil {
		t.Fatal(err)
	}
	fill(t, store, PageKey{Page: 1, PerPage: 20}, pageOf(prod("p1", "One")))

	if err := store.InvalidateLists(ctx); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := store.GetPage(ctx, PageKey{Page: 1, PerPage: 20}); ok {
		t.Error("listing pages should be gone")
	}
	if _, ok, _ := store.GetProduct(ctx, "p1"); !ok {
		t.Error("by-id slots are separate and should survive")
	}
}

func TestPageKey_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  PageKey
	}{
		{"bare", PageKey{Page: 1, PerPage: 20}},
		{"full", PageKey{Search: "hammer", Category: "tools", Sort: "price_asc", Page: 3, PerPage: 50}},
		{"search with spaces", PageKey{Search: "red hammer", Page: 2, PerPage: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageKey(tt.key.String())
			if err != nil {
				t.Fatalf("ParsePageKey: %v", err)
			}
			if got != tt.key {
				t.Errorf("round trip changed the key: %+v != %+v", got, tt.key)
			}
		})
	}
}
