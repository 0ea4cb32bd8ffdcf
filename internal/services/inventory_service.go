package services

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

type InventoryService struct {
	Prods *repos.ProductRepo
}

func NewInventoryService(prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Prods: prods}
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, productID string) (domain.Availability, error) {
	qty, err := s.Prods.Stock(ctx, productID)
	if err != nil {
		// Unknown or inactive products read as sold out.
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Availability{Status: "OUT_OF_STOCK", Qty: 0}, nil
		}
		return domain.Availability{}, err
	}

	status := "OUT_OF_STOCK"
	switch {
	case qty >= 5:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}

func (s *InventoryService) SetStock(ctx context.Context, productID string, qty int) error {
	if qty < 0 {
		return &domain.ValidationError{Fields: map[string]string{"stock_quantity": "Stock quantity must be a whole number of 0 or more"}}
	}
	return s.Prods.SetStock(ctx, productID, qty)
}
