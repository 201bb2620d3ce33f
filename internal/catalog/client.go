package catalog

import "context"

// Client is the fixed contract against the upstream product service.
// Upload and delete responses carry a human-readable message alongside
// the updated product record.
type Client interface {
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, q ListQuery) (ListPage, error)
	UploadImages(ctx context.Context, id string, files []Upload) (Product, string, error)
	DeleteImage(ctx context.Context, id, imageURL string) (Product, string, error)
	UpdateProduct(ctx context.Context, id string, in UpdateInput) (Product, error)
}
