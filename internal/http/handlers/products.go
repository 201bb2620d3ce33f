package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/drafts"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/http/middleware"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/http/validation"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/listcache"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
)

// ProductsHandler serves cached product listings and drafts.
type ProductsHandler struct {
	client catalog.Client
	cache  listcache.Store
	drafts *drafts.Service
	log    *slog.Logger
}

func NewProductsHandler(client catalog.Client, cache listcache.Store, draftSvc *drafts.Service, log *slog.Logger) *ProductsHandler {
	return &ProductsHandler{client: client, cache: cache, drafts: draftSvc, log: log}
}

// List serves one listing page, cache first. A miss runs the fill
// protocol: a fill that lost to a concurrent invalidation or upsert is
// not cached, the fetched data is served as-is.
func (h *ProductsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	key := pageKeyFrom(c)

	if page, ok, err := h.cache.GetPage(ctx, key); err == nil && ok {
		c.JSON(http.StatusOK, page)
		return
	} else if err != nil {
		h.log.LogAttrs(ctx, slog.LevelWarn, "list_cache_read_failed", slog.Any("err", err))
	}

	tok, err := h.cache.FillStart(ctx, key)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	page, err := h.client.ListProducts(ctx, catalog.ListQuery{
		Search:   key.Search,
		Category: key.Category,
		Sort:     key.Sort,
		Page:     key.Page,
		PerPage:  key.PerPage,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	if stored, err := h.cache.FillComplete(ctx, tok, page); err != nil {
		h.log.LogAttrs(ctx, slog.LevelWarn, "list_cache_fill_failed", slog.Any("err", err))
	} else if !stored {
		// A targeted update landed while we were fetching; the cache
		// copy is newer than ours where it matters, serve ours uncached.
		h.log.LogAttrs(ctx, slog.LevelDebug, "list_cache_fill_dropped",
			slog.String("key", tok.Key.String()))
	}

	c.JSON(http.StatusOK, page)
}

// Get serves one product, by-id cache slot first.
func (h *ProductsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	if p, ok, err := h.cache.GetProduct(ctx, id); err == nil && ok {
		c.JSON(http.StatusOK, gin.H{"product": p})
		return
	} else if err != nil {
		h.log.LogAttrs(ctx, slog.LevelWarn, "product_cache_read_failed", slog.Any("err", err))
	}

	p, err := h.client.GetProduct(ctx, id)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	if err := h.cache.SetProduct(ctx, p); err != nil {
		h.log.LogAttrs(ctx, slog.LevelWarn, "product_cache_write_failed", slog.Any("err", err))
	}
	c.JSON(http.StatusOK, gin.H{"product": p})
}

// SaveDraft stores the dashboard's form state for later autosave.
func (h *ProductsHandler) SaveDraft(c *gin.Context) {
	var in drafts.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Draft is invalid.", validation.FromBindError(err, &in)))
		return
	}

	d, err := h.drafts.Save(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": d})
}

func (h *ProductsHandler) GetDraft(c *gin.Context) {
	d, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": d})
}

func pageKeyFrom(c *gin.Context) listcache.PageKey {
	page, _ := strconv.Atoi(c.Query("page"))
	if page <= 0 {
		page = 1
	}
	per, _ := strconv.Atoi(c.Query("limit"))
	if per <= 0 || per > 100 {
		per = 20
	}
	return listcache.PageKey{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Page:     page,
		PerPage:  per,
	}
}
