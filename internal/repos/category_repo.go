package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

const categoryCols = `
    id, name, slug, description, image_url, parent_category_id, is_active,
    detail_type, display_order,
    CAST(created_at AS TEXT) AS created_at,
    COALESCE(CAST(updated_at AS TEXT),'') AS updated_at`

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// ListRoots returns every root category, active or not, in menu order.
func (r *CategoryRepo) ListRoots(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+categoryCols+`
  FROM categories
  WHERE parent_category_id IS NULL
  ORDER BY display_order, name`)
	return out, err
}

// ListSubcategories returns every subcategory grouped by parent.
func (r *CategoryRepo) ListSubcategories(ctx context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.SelectContext(ctx, &out, `
  SELECT`+categoryCols+`
  FROM categories
  WHERE parent_category_id IS NOT NULL
  ORDER BY parent_category_id, display_order, name`)
	return out, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
  SELECT`+categoryCols+`
  FROM categories
  WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.ErrNotFound
	}
	return c, err
}

func (r *CategoryRepo) BySlug(ctx context.Context, slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`
  SELECT`+categoryCols+`
  FROM categories
  WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return c, domain.ErrNotFound
	}
	return c, err
}

func (r *CategoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var ok bool
	err := r.db.GetContext(ctx, &ok, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = ?)`), slug)
	return ok, err
}

// Create inserts c. A duplicate slug surfaces as domain.ErrConflict.
func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
  INSERT INTO categories(id, name, slug, description, image_url, parent_category_id, is_active, detail_type, display_order)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.ParentCategoryID, c.IsActive, c.DetailType, c.DisplayOrder)
	if IsUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *CategoryRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
  UPDATE categories SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`), active, id)
	if err != nil {
		return err
	}
	return affected(res)
}

// Delete removes a category and its subcategories. It refuses with
// domain.ErrConflict while any product references either.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var n int
		err := tx.GetContext(ctx, &n, tx.Rebind(`
  SELECT COUNT(*) FROM products
  WHERE category_id = ? OR subcategory_id = ?
     OR subcategory_id IN (SELECT id FROM categories WHERE parent_category_id = ?)`), id, id, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrConflict
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM categories WHERE parent_category_id = ?`), id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM categories WHERE id = ?`), id)
		if err != nil {
			return err
		}
		return affected(res)
	})
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
