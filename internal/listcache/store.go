// Package listcache is the shared cache of paginated product listings.
// Several cached pages may hold a stale copy of the same product; the
// Upsert helper patches all of them at once. Writers follow a fill
// protocol so an in-flight read can never clobber a newer targeted
// update with stale data.
package listcache

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
)

// PageKey identifies one cached listing page by its query parameters.
type PageKey struct {
	Search   string
	Category string
	Sort     string
	Page     int
	PerPage  int
}

func (k PageKey) String() string {
	v := url.Values{}
	if k.Search != "" {
		v.Set("search", k.Search)
	}
	if k.Category != "" {
		v.Set("category", k.Category)
	}
	if k.Sort != "" {
		v.Set("sort", k.Sort)
	}
	v.Set("page", strconv.Itoa(k.Page))
	v.Set("per", strconv.Itoa(k.PerPage))
	return v.Encode()
}

func ParsePageKey(s string) (PageKey, error) {
	v, err := url.ParseQuery(s)
	if err != nil {
		return PageKey{}, err
	}
	page, _ := strconv.Atoi(v.Get("page"))
	per, _ := strconv.Atoi(v.Get("per"))
	return PageKey{
		Search:   v.Get("search"),
		Category: v.Get("category"),
		Sort:     v.Get("sort"),
		Page:     page,
		PerPage:  per,
	}, nil
}

// FillToken pins a fill to the cache generation it started against.
type FillToken struct {
	Key PageKey
	gen uint64
}

// Store is the injected cache abstraction. A fill runs as
// FillStart -> fetch upstream -> FillComplete; FillComplete reports
// false (and writes nothing) when an invalidation or upsert landed in
// between, in which case the caller re-reads or serves the fetched data
// without caching it.
type Store interface {
	GetPage(ctx context.Context, key PageKey) (catalog.ListPage, bool, error)
	PageKeys(ctx context.Context) ([]PageKey, error)
	FillStart(ctx context.Context, key PageKey) (FillToken, error)
	FillComplete(ctx context.Context, tok FillToken, page catalog.ListPage) (bool, error)
	ReplacePage(ctx context.Context, key PageKey, page catalog.ListPage) error
	InvalidateLists(ctx context.Context) error
	GetProduct(ctx context.Context, id string) (catalog.Product, bool, error)
	SetProduct(ctx context.Context, p catalog.Product) error
	InvalidateProduct(ctx context.Context, id string) error
}
