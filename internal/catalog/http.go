package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
)

// HTTPClient talks to the product service REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the product service response wrapper: data plus a
// human-readable message.
type envelope struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
	ListPage
}

func (c *HTTPClient) GetProduct(ctx context.Context, id string) (Product, error) {
	env, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, "")
	if err != nil {
		return Product{}, err
	}
	if env.Product == nil {
		return Product{}, apperr.Wrap(fmt.Errorf("catalog: product %s missing from response", id))
	}
	return *env.Product, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context, q ListQuery) (ListPage, error) {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("limit", strconv.Itoa(q.PerPage))
	}
	path := "/products"
	if enc := v.Encode(); enc != "" {
		path += "?" + enc
	}
	env, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return ListPage{}, err
	}
	return env.ListPage, nil
}

func (c *HTTPClient) UploadImages(ctx context.Context, id string, files []Upload) (Product, string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return Product{}, "", apperr.Wrap(err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return Product{}, "", apperr.Wrap(fmt.Errorf("catalog: reading %s: %w", f.Name, err))
		}
	}
	if err := mw.Close(); err != nil {
		return Product{}, "", apperr.Wrap(err)
	}

	env, err := c.do(ctx, http.MethodPost, "/products/"+url.PathEscape(id)+"/images", &body, mw.FormDataContentType())
	if err != nil {
		return Product{}, "", err
	}
	if env.Product == nil {
		return Product{}, "", apperr.Wrap(fmt.Errorf("catalog: upload response for %s has no product", id))
	}
	return *env.Product, env.Message, nil
}

func (c *HTTPClient) DeleteImage(ctx context.Context, id, imageURL string) (Product, string, error) {
	payload, _ := json.Marshal(map[string]string{"imageUrl": imageURL})
	env, err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id)+"/images", bytes.NewReader(payload), "application/json")
	if err != nil {
		return Product{}, "", err
	}
	if env.Product == nil {
		return Product{}, "", apperr.Wrap(fmt.Errorf("catalog: delete response for %s has no product", id))
	}
	return *env.Product, env.Message, nil
}

func (c *HTTPClient) UpdateProduct(ctx context.Context, id string, in UpdateInput) (Product, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return Product{}, apperr.Wrap(err)
	}
	env, err := c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), bytes.NewReader(payload), "application/json")
	if err != nil {
		return Product{}, err
	}
	if env.Product == nil {
		return Product{}, apperr.Wrap(fmt.Errorf("catalog: update response for %s has no product", id))
	}
	return *env.Product, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return envelope{}, apperr.Wrap(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, apperr.UnavailableErr("", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return envelope{}, apperr.UnavailableErr("", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return envelope{}, apperr.NotFoundErr(upstreamMessage(raw, "Product not found."))
	}
	if resp.StatusCode >= 400 {
		// The service usually ships a usable message; keep it for the admin.
		msg := upstreamMessage(raw, "")
		return envelope{}, apperr.UnavailableErr(msg, fmt.Errorf("catalog: %s %s: status %d", method, path, resp.StatusCode))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, apperr.Wrap(fmt.Errorf("catalog: decoding %s %s: %w", method, path, err))
	}
	return env, nil
}

func upstreamMessage(raw []byte, fallback string) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	return fallback
}
