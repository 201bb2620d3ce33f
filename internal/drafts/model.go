package drafts

import (
	"time"

	"gorm.io/datatypes"
)

// Draft is the dashboard's saved form state for one product: what the
// admin has typed but not necessarily committed upstream yet. The
// autosave path commits it when image processing finishes.
type Draft struct {
	ID          string         `gorm:"primaryKey"`
	ProductID   string         `gorm:"column:product_id;uniqueIndex"`
	Name        string         `gorm:"column:name"`
	Description string         `gorm:"column:description"`
	Category    string         `gorm:"column:category"`
	PriceCents  int64          `gorm:"column:price_cents"`
	Currency    string         `gorm:"column:currency"`
	IsFeatured  bool           `gorm:"column:is_featured"`
	ImageURLs   datatypes.JSON `gorm:"column:image_urls"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (Draft) TableName() string { return "product_drafts" }
