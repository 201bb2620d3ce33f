package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// Upsert writes the draft keyed by product id.
func (r *Repo) Upsert(ctx context.Context, d Draft) (Draft, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = time.Now()
	}
	d.UpdatedAt = time.Now()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "price_cents",
				"currency", "is_featured", "image_urls", "updated_at",
			}),
		}).
		Create(&d).Error
	return d, err
}

func (r *Repo) GetByProduct(ctx context.Context, productID string) (Draft, error) {
	var d Draft
	err := r.db.WithContext(ctx).
		First(&d, "product_id = ?", productID).Error
	return d, err
}

func (r *Repo) DeleteByProduct(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).
		Delete(&Draft{}, "product_id = ?", productID).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
