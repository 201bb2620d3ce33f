package listcache

import (
	"context"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
)

// Upsert folds an authoritative product record into every cached page
// that holds a stale copy, and unconditionally into the by-id slot. A
// page is rewritten only when at least one entry matched; matching
// continues across all pages because a product can sit on several
// cached filter/sort views at once. The return value reports whether
// any page was patched; callers that get false must fall back to
// InvalidateLists so stale listings cannot survive indefinitely.
func Upsert(ctx context.Context, store Store, updated catalog.Product) (bool, error) {
	keys, err := store.PageKeys(ctx)
	if err != nil {
		return false, err
	}

	patchedAny := false
	for _, key := range keys {
		page, ok, err := store.GetPage(ctx, key)
		if err != nil {
			return patchedAny, err
		}
		if !ok {
			continue
		}

		// Readers hold the slice GetPage handed them without any lock,
		// so patch a fresh copy, never the shared backing array.
		patched := false
		var products []catalog.Product
		for i := range page.Products {
			if page.Products[i].ID != updated.ID {
				continue
			}
			if products == nil {
				products = append([]catalog.Product(nil), page.Products...)
			}
			products[i] = mergeProduct(page.Products[i], updated)
			patched = true
		}
		if !patched {
			continue
		}
		page.Products = products
		if err := store.ReplacePage(ctx, key, page); err != nil {
			return patchedAny, err
		}
		patchedAny = true
	}

	if err := store.SetProduct(ctx, updated); err != nil {
		return patchedAny, err
	}
	return patchedAny, nil
}

// mergeProduct overlays the fresh record on the cached entry. The fresh
// record comes from fetch-by-id and is complete; fields the service
// omits on some endpoints keep their cached value instead of zeroing.
func mergeProduct(old, fresh catalog.Product) catalog.Product {
	merged := fresh
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = old.CreatedAt
	}
	if merged.Currency == "" {
		merged.Currency = old.Currency
	}
	if merged.Category == "" {
		merged.Category = old.Category
	}
	return merged
}
