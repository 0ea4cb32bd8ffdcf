package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type DetailRepo struct{ db *sqlx.DB }

func NewDetailRepo(db *sqlx.DB) *DetailRepo { return &DetailRepo{db: db} }

// Insert writes d into the table for its detail type.
func (r *DetailRepo) Insert(ctx context.Context, q sqlx.ExtContext, d domain.DetailRecord) error {
	var query string
	switch d.(type) {
	case *domain.MobileDetails:
		query = `
  INSERT INTO mobile_details(id, product_id, brand, compatible_model, type, color, material)
  VALUES (:id, :product_id, :brand, :compatible_model, :type, :color, :material)`
	case *domain.ApparelDetails:
		query = `
  INSERT INTO apparel_details(id, product_id, brand, material, color, sizes, fit_types, care_instructions)
  VALUES (:id, :product_id, :brand, :material, :color, :sizes, :fit_types, :care_instructions)`
	case *domain.AccessoriesDetails:
		query = `
  INSERT INTO accessories_details(id, product_id, brand, material, color, dimensions)
  VALUES (:id, :product_id, :brand, :material, :color, :dimensions)`
	default:
		return fmt.Errorf("unknown detail record %T", d)
	}
	_, err := sqlx.NamedExecContext(ctx, q, query, d)
	return err
}

// ForProduct loads the detail record of productID from the table for dt.
// It returns nil when dt is DetailNone or no row exists.
func (r *DetailRepo) ForProduct(ctx context.Context, productID string, dt domain.DetailType) (domain.DetailRecord, error) {
	var (
		dest  domain.DetailRecord
		query string
	)
	switch dt {
	case domain.DetailMobile:
		dest = &domain.MobileDetails{}
		query = `SELECT id, product_id, brand, compatible_model, type, color, material FROM mobile_details WHERE product_id = ?`
	case domain.DetailApparel:
		dest = &domain.ApparelDetails{}
		query = `SELECT id, product_id, brand, material, color, sizes, fit_types, care_instructions FROM apparel_details WHERE product_id = ?`
	case domain.DetailAccessories:
		dest = &domain.AccessoriesDetails{}
		query = `SELECT id, product_id, brand, material, color, dimensions FROM accessories_details WHERE product_id = ?`
	default:
		return nil, nil
	}
	err := r.db.GetContext(ctx, dest, r.db.Rebind(query), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dest, nil
}
