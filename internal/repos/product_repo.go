package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

const productCols = `
    id, name, slug, price, original_price, description, stock_quantity,
    is_active, show_in_hero, badge, category_id, subcategory_id, image_url,
    CAST(created_at AS TEXT) AS created_at,
    COALESCE(CAST(updated_at AS TEXT),'') AS updated_at`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// SlugExists reports whether a product already uses slug.
func (r *ProductRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM products WHERE slug = ?)`), slug)
	return ok, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
  SELECT`+productCols+`
  FROM products
  WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.ErrNotFound
	}
	return p, err
}

// BySlug returns an active product.
func (r *ProductRepo) BySlug(ctx context.Context, slug string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
  SELECT`+productCols+`
  FROM products
  WHERE slug = ? AND is_active = ?`), slug, true)
	if errors.Is(err, sql.ErrNoRows) {
		return p, domain.ErrNotFound
	}
	return p, err
}

// ListByCategory returns active products filed under catID either as their
// category or their subcategory, newest first.
func (r *ProductRepo) ListByCategory(ctx context.Context, catID string, limit, offset int) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT`+productCols+`
  FROM products
  WHERE (category_id = ? OR subcategory_id = ?) AND is_active = ?
  ORDER BY created_at DESC, name
  LIMIT ? OFFSET ?`), catID, catID, true, limit, offset)
	return out, err
}

func (r *ProductRepo) Search(ctx context.Context, q string, limit, offset int) ([]domain.Product, error) {
	where := `is_active = ?`
	args := []any{true}
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, like, like)
	}
	query := `
  SELECT` + productCols + `
  FROM products
  WHERE ` + where + `
  ORDER BY created_at DESC, name
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...)
	return out, err
}

func (r *ProductRepo) ListHero(ctx context.Context, limit int) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
  SELECT`+productCols+`
  FROM products
  WHERE show_in_hero = ? AND is_active = ?
  ORDER BY created_at DESC, name
  LIMIT ?`), true, true, limit)
	return out, err
}

// Stock returns the stock quantity of an active product.
func (r *ProductRepo) Stock(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`
  SELECT stock_quantity FROM products WHERE id = ? AND is_active = ?`), id, true)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return n, err
}

func (r *ProductRepo) SetStock(ctx context.Context, id string, qty int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
  UPDATE products SET stock_quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`), qty, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Insert writes p through q, which is the submission transaction.
func (r *ProductRepo) Insert(ctx context.Context, q sqlx.ExtContext, p domain.Product) error {
	_, err := q.ExecContext(ctx, q.Rebind(`
  INSERT INTO products(id, name, slug, price, original_price, description, stock_quantity,
                       is_active, show_in_hero, badge, category_id, subcategory_id, image_url)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Slug, p.Price, p.OriginalPrice, p.Description, p.StockQuantity,
		p.IsActive, p.ShowInHero, p.Badge, p.CategoryID, p.SubcategoryID, p.ImageURL)
	return err
}

// Update rewrites the editable fields of p. Slug and category stay as stored.
func (r *ProductRepo) Update(ctx context.Context, q sqlx.ExtContext, p domain.Product) error {
	res, err := q.ExecContext(ctx, q.Rebind(`
  UPDATE products
  SET name = ?, price = ?, original_price = ?, description = ?, stock_quantity = ?,
      is_active = ?, show_in_hero = ?, badge = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
  WHERE id = ?`),
		p.Name, p.Price, p.OriginalPrice, p.Description, p.StockQuantity,
		p.IsActive, p.ShowInHero, p.Badge, p.ImageURL, p.ID)
	if err != nil {
		return err
	}
	return affected(res)
}

// DeleteCascade removes a product and every row that references it.
func (r *ProductRepo) DeleteCascade(ctx context.Context, q sqlx.ExtContext, id string) error {
	for _, table := range []string{
		"product_images",
		"mobile_details",
		"apparel_details",
		"accessories_details",
		"reviews",
		"wishlist_items",
		"cart_items",
	} {
		if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM `+table+` WHERE product_id = ?`), id); err != nil {
			return err
		}
	}
	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return affected(res)
}
