package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/http/handlers"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/imagesync"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/listcache"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/storage"
	"github.com/ShahHussain182/ecommerce-admin-gateway/pkg/view"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	mock     *catalog.Mock
	cache    *listcache.Memory
	spool    *storage.Memory
	registry *imagesync.Registry
	router   *gin.Engine
}

func newEnv(t *testing.T, adminTokenHash string) *env {
	t.Helper()
	l := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := &env{
		mock:  catalog.NewMock(),
		cache: listcache.NewMemory(),
		spool: storage.NewMemory(),
	}
	e.mock.SetProduct(catalog.Product{
		ID:        "p1",
		Name:      "Widget",
		ImageURLs: []string{"/img/1.png"},
		ImageRenditions: []catalog.Rendition{
			{Original: "/img/1.png", Thumbnail: "/img/1-t.png"},
		},
		ImageProcessingStatus: catalog.StatusCompleted,
	})
	e.mock.Pages = catalog.ListPage{
		Products:   []catalog.Product{{ID: "p1", Name: "Widget"}},
		Page:       1,
		TotalPages: 1,
		TotalCount: 1,
	}

	e.registry = imagesync.NewRegistry(imagesync.Deps{
		Client: e.mock,
		Cache:  e.cache,
		Spool:  e.spool,
		Log:    l,
	})
	t.Cleanup(e.registry.CloseAll)

	ph := handlers.NewProductsHandler(e.mock, e.cache, nil, l)
	ih := handlers.NewImagesHandler(e.registry, l)
	e.router = NewRouter(l, adminTokenHash, ph, ih)
	return e
}

func (e *env) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return out
}

func multipartImages(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := mw.CreateFormFile("images", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte("data")); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestRouter_ListCachesSecondRead(t *testing.T) {
	e := newEnv(t, "")

	w := e.do(t, http.MethodGet, "/admin/api/products?page=1&limit=20", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	w = e.do(t, http.MethodGet, "/admin/api/products?page=1&limit=20", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if e.mock.ListCalls != 1 {
		t.Errorf("second read should come from cache, upstream hit %d times", e.mock.ListCalls)
	}

	page := decode[catalog.ListPage](t, w)
	if len(page.Products) != 1 || page.Products[0].ID != "p1" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestRouter_GetProductNotFound(t *testing.T) {
	e := newEnv(t, "")
	e.mock.GetErr = apperr.NotFoundErr("Product not found.")

	w := e.do(t, http.MethodGet, "/admin/api/products/ghost", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	body := decode[map[string]any](t, w)
	if body["error"] == "" || body["request_id"] == "" {
		t.Errorf("error body should carry message and request id: %v", body)
	}
}

func TestRouter_ImageSessionLifecycle(t *testing.T) {
	e := newEnv(t, "")

	// Mount.
	w := e.do(t, http.MethodPost, "/admin/api/products/p1/images/session", nil, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("open session: status %d: %s", w.Code, w.Body.String())
	}
	grid := decode[view.ImageGrid](t, w)
	if len(grid.Items) != 1 || !grid.Items[0].IsExisting {
		t.Fatalf("unexpected initial grid %+v", grid)
	}
	if grid.CanDelete {
		t.Error("single image must not be deletable")
	}

	// Select two files.
	body, ct := multipartImages(t, "a.png", "b.png")
	w = e.do(t, http.MethodPost, "/admin/api/products/p1/images", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("select: status %d: %s", w.Code, w.Body.String())
	}
	grid = decode[view.ImageGrid](t, w)
	if len(grid.Items) != 3 {
		t.Fatalf("expected 3 items after select, got %d", len(grid.Items))
	}
	if e.spool.Len() != 2 {
		t.Errorf("expected 2 spooled objects, got %d", e.spool.Len())
	}

	// Remove one local item.
	var localID string
	for _, it := range grid.Items {
		if !it.IsExisting {
			localID = it.ID
			break
		}
	}
	w = e.do(t, http.MethodDelete, "/admin/api/products/p1/images/local/"+localID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("remove local: status %d: %s", w.Code, w.Body.String())
	}
	if e.spool.Len() != 1 {
		t.Errorf("expected 1 spooled object after removal, got %d", e.spool.Len())
	}

	// Upload the rest.
	e.mock.Message = "1 image(s) uploaded"
	e.mock.OnUpload = func(id string, files []catalog.Upload) catalog.Product {
		return catalog.Product{
			ID:        "p1",
			ImageURLs: []string{"/img/1.png", "/img/2.png"},
			ImageRenditions: []catalog.Rendition{
				{Original: "/img/1.png", Thumbnail: "/img/1-t.png"},
				{Original: "/img/2.png", Thumbnail: "/img/2-t.png"},
			},
			ImageProcessingStatus: catalog.StatusCompleted,
		}
	}
	w = e.do(t, http.MethodPost, "/admin/api/products/p1/images/upload", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("upload: status %d: %s", w.Code, w.Body.String())
	}
	var uploadResp struct {
		Message string         `json:"message"`
		Grid    view.ImageGrid `json:"grid"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &uploadResp); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}
	if uploadResp.Message != "1 image(s) uploaded" {
		t.Errorf("unexpected message %q", uploadResp.Message)
	}
	if len(uploadResp.Grid.Items) != 2 {
		t.Errorf("expected 2 remote items, got %+v", uploadResp.Grid.Items)
	}
	if e.spool.Len() != 0 {
		t.Errorf("upload should drain the spool, %d remain", e.spool.Len())
	}

	// Unmount.
	w = e.do(t, http.MethodDelete, "/admin/api/products/p1/images/session", nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("close session: status %d", w.Code)
	}
	w = e.do(t, http.MethodGet, "/admin/api/products/p1/images", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("listing a closed session should 404, got %d", w.Code)
	}
}

func TestRouter_SelectWithoutSession(t *testing.T) {
	e := newEnv(t, "")
	body, ct := multipartImages(t, "a.png")
	w := e.do(t, http.MethodPost, "/admin/api/products/p1/images", body, ct)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without an open session, got %d", w.Code)
	}
}

func TestRouter_AdminToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	e := newEnv(t, string(hash))

	w := e.do(t, http.MethodGet, "/admin/api/products", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token should 401, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/api/products", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong token should 403, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/api/products", nil)
	req.Header.Set("X-Admin-Token", "s3cret")
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token should pass, got %d", rec.Code)
	}
}
