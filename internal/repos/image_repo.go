package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ImageRepo struct{ db *sqlx.DB }

func NewImageRepo(db *sqlx.DB) *ImageRepo { return &ImageRepo{db: db} }

// InsertAll writes images in slice order.
func (r *ImageRepo) InsertAll(ctx context.Context, q sqlx.ExtContext, images []domain.ProductImage) error {
	stmt := q.Rebind(`
  INSERT INTO product_images(id, product_id, image_url, alt_text, display_order)
  VALUES (?, ?, ?, ?, ?)`)
	for _, img := range images {
		if _, err := q.ExecContext(ctx, stmt, img.ID, img.ProductID, img.ImageURL, img.AltText, img.DisplayOrder); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByProduct drops the image set of productID.
func (r *ImageRepo) DeleteByProduct(ctx context.Context, q sqlx.ExtContext, productID string) error {
	_, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM product_images WHERE product_id = ?`), productID)
	return err
}

func (r *ImageRepo) ListByProduct(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	out := []domain.ProductImage{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT id, product_id, image_url, alt_text, display_order
  FROM product_images
  WHERE product_id = ?
  ORDER BY display_order, id`), productID)
	return out, err
}
