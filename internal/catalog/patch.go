package catalog

import (
	"strconv"
	"strings"

	"storefront/internal/domain"
)

// ProductPatch is a partial product edit. Nil fields are left untouched.
// Category is accepted only so that a change can be refused: detail records
// are typed by the category they were created under.
type ProductPatch struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *NumberField     `json:"price"`
	OriginalPrice *NumberField     `json:"original_price"`
	StockQuantity *NumberField     `json:"stock_quantity"`
	IsActive      *bool            `json:"is_active"`
	ShowInHero    *bool            `json:"show_in_hero"`
	Badge         *string          `json:"badge"`
	Category      *string          `json:"category"`
	Images        *[]UploadedImage `json:"images"`
}

// ValidateProductPatch applies the create-form field rules to the fields
// present in p. currentCategoryID is the product's stored category.
func ValidateProductPatch(p ProductPatch, currentCategoryID string, categories []domain.Category) FormResult {
	errs := map[string]string{}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		errs["name"] = message("name", "required")
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		errs["description"] = message("description", "required")
	}
	if p.Price != nil {
		if !ValidPrice(string(*p.Price)) {
			errs["price"] = message("price", "price")
		}
	}
	if p.OriginalPrice != nil {
		if v := strings.TrimSpace(string(*p.OriginalPrice)); v != "" {
			if !ValidPrice(v) {
				errs["original_price"] = message("original_price", "price")
			}
		}
	}
	if p.StockQuantity != nil {
		if v := strings.TrimSpace(string(*p.StockQuantity)); v != "" {
			if n, err := strconv.Atoi(v); err != nil || n < 0 {
				errs["stock_quantity"] = message("stock_quantity", "int_gte0")
			}
		}
	}
	if p.Category != nil {
		cat, ok := FindCategory(strings.TrimSpace(*p.Category), categories)
		if !ok || cat.ID != currentCategoryID {
			errs["category"] = "Category cannot be changed after creation"
		}
	}
	return FormResult{IsValid: len(errs) == 0, Errors: errs}
}
