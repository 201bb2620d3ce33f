package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
)

func respond(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("encoding response: %v", err)
	}
}

func TestHTTPClient_GetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/p1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		respond(t, w, http.StatusOK, map[string]any{
			"product": map[string]any{
				"id":                    "p1",
				"name":                  "Widget",
				"imageUrls":             []string{"/img/1.png"},
				"imageProcessingStatus": "completed",
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	p, err := c.GetProduct(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if p.ID != "p1" || p.Name != "Widget" || p.ImageProcessingStatus != StatusCompleted {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestHTTPClient_GetProduct_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusNotFound, map[string]string{"message": "Product not found"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.GetProduct(context.Background(), "ghost")
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.NotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if ae.PublicMsg != "Product not found" {
		t.Errorf("upstream message should surface, got %q", ae.PublicMsg)
	}
}

func TestHTTPClient_ListProducts_QueryEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "red hammer" || q.Get("category") != "tools" ||
			q.Get("page") != "2" || q.Get("limit") != "20" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		respond(t, w, http.StatusOK, map[string]any{
			"products":   []map[string]any{{"id": "p1"}},
			"page":       2,
			"totalPages": 4,
			"totalCount": 61,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	page, err := c.ListProducts(context.Background(), ListQuery{
		Search: "red hammer", Category: "tools", Page: 2, PerPage: 20,
	})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(page.Products) != 1 || page.TotalCount != 61 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestHTTPClient_UploadImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/products/p1/images" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		files := r.MultipartForm.File["images"]
		if len(files) != 2 {
			t.Fatalf("expected 2 files in the images field, got %d", len(files))
		}
		if files[0].Filename != "a.png" || files[1].Filename != "b.png" {
			t.Errorf("unexpected filenames %q %q", files[0].Filename, files[1].Filename)
		}
		respond(t, w, http.StatusOK, map[string]any{
			"message": "2 image(s) uploaded",
			"product": map[string]any{"id": "p1", "imageProcessingStatus": "pending"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	p, msg, err := c.UploadImages(context.Background(), "p1", []Upload{
		{Name: "a.png", ContentType: "image/png", Reader: strings.NewReader("aaa")},
		{Name: "b.png", ContentType: "image/png", Reader: strings.NewReader("bbb")},
	})
	if err != nil {
		t.Fatalf("UploadImages: %v", err)
	}
	if msg != "2 image(s) uploaded" {
		t.Errorf("unexpected message %q", msg)
	}
	if p.ImageProcessingStatus != StatusPending {
		t.Errorf("unexpected status %s", p.ImageProcessingStatus)
	}
}

func TestHTTPClient_DeleteImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/products/p1/images" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body["imageUrl"] != "/img/1.png" {
			t.Errorf("unexpected imageUrl %q", body["imageUrl"])
		}
		respond(t, w, http.StatusOK, map[string]any{
			"message": "Image deleted",
			"product": map[string]any{"id": "p1"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, msg, err := c.DeleteImage(context.Background(), "p1", "/img/1.png")
	if err != nil {
		t.Fatalf("DeleteImage: %v", err)
	}
	if msg != "Image deleted" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestHTTPClient_UpstreamErrorMessageSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusBadRequest, map[string]string{
			"message": "Maximum 5 images allowed",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second)
	_, _, err := c.UploadImages(context.Background(), "p1", []Upload{
		{Name: "a.png", Reader: strings.NewReader("aaa")},
	})
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Unavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if ae.PublicMsg != "Maximum 5 images allowed" {
		t.Errorf("upstream message should surface, got %q", ae.PublicMsg)
	}
}

func TestHTTPClient_UnreachableService(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.GetProduct(context.Background(), "p1")
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.Unavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
