package drafts

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/catalog"
	"github.com/ShahHussain182/ecommerce-admin-gateway/internal/shared/apperr"
)

type Service struct {
	repo   *Repo
	client catalog.Client
	log    *slog.Logger
}

func NewService(repo *Repo, client catalog.Client, log *slog.Logger) *Service {
	return &Service{repo: repo, client: client, log: log}
}

// Input is the dashboard form payload.
type Input struct {
	Name        string   `json:"name" binding:"required,min=2,max=200"`
	Description string   `json:"description" binding:"max=5000"`
	Category    string   `json:"category" binding:"required"`
	PriceCents  int64    `json:"priceCents" binding:"min=0"`
	Currency    string   `json:"currency" binding:"omitempty,len=3"`
	IsFeatured  bool     `json:"isFeatured"`
	ImageURLs   []string `json:"imageUrls"`
}

// Save stores the admin's current form state for a product.
func (s *Service) Save(ctx context.Context, productID string, in Input) (Draft, error) {
	urls, err := json.Marshal(in.ImageURLs)
	if err != nil {
		return Draft{}, apperr.Wrap(err)
	}
	d, err := s.repo.Upsert(ctx, Draft{
		ProductID:   productID,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		PriceCents:  in.PriceCents,
		Currency:    in.Currency,
		IsFeatured:  in.IsFeatured,
		ImageURLs:   urls,
	})
	if IsDuplicateKey(err) {
		return Draft{}, apperr.ConflictErr("Another draft save for this product is in flight.")
	}
	if err != nil {
		return Draft{}, apperr.Wrap(err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, productID string) (Draft, error) {
	d, err := s.repo.GetByProduct(ctx, productID)
	if IsNotFound(err) {
		return Draft{}, apperr.NotFoundErr("No draft saved for this product.")
	}
	if err != nil {
		return Draft{}, apperr.Wrap(err)
	}
	return d, nil
}

// Autosave commits the saved form state upstream after image processing
// reached a final state. The server's image URL list always wins over
// whatever the draft recorded; without a draft the product's own fields
// are echoed back, which still persists the fresh URLs.
func (s *Service) Autosave(ctx context.Context, p catalog.Product) error {
	in := catalog.UpdateInput{
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		PriceCents:  p.PriceCents,
		Currency:    p.Currency,
		IsFeatured:  p.IsFeatured,
		ImageURLs:   p.ImageURLs,
	}

	hadDraft := false
	d, err := s.repo.GetByProduct(ctx, p.ID)
	switch {
	case IsNotFound(err):
		// no draft; fall through with the product's own fields
	case err != nil:
		return apperr.Wrap(err)
	default:
		hadDraft = true
		in.Name = d.Name
		in.Description = d.Description
		in.Category = d.Category
		in.PriceCents = d.PriceCents
		in.Currency = d.Currency
		in.IsFeatured = d.IsFeatured
	}

	if _, err := s.client.UpdateProduct(ctx, p.ID, in); err != nil {
		return err
	}

	if hadDraft {
		// Committed upstream; the draft has served its purpose.
		if err := s.repo.DeleteByProduct(ctx, p.ID); err != nil {
			s.log.LogAttrs(ctx, slog.LevelWarn, "draft_cleanup_failed",
				slog.String("product_id", p.ID),
				slog.Any("err", err),
			)
		}
	}
	s.log.LogAttrs(ctx, slog.LevelInfo, "draft_autosaved",
		slog.String("product_id", p.ID),
		slog.String("processing_status", string(p.ImageProcessingStatus)),
	)
	return nil
}
