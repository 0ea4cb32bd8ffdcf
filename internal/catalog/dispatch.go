package catalog

import (
	"github.com/google/uuid"

	"storefront/internal/domain"
)

// DetailTypeOf returns the detail schema a root category's products use.
// Subcategories never carry a type of their own.
func DetailTypeOf(cat domain.Category) domain.DetailType {
	return cat.DetailType
}

// BuildDetail constructs the detail record for productID from the validated
// form. It returns nil when dt is DetailNone.
func BuildDetail(productID string, dt domain.DetailType, form ProductForm) domain.DetailRecord {
	form = form.Normalized()
	id := uuid.NewString()
	switch dt {
	case domain.DetailMobile:
		in := MobileInput{}
		if form.MobileDetails != nil {
			in = *form.MobileDetails
		}
		return &domain.MobileDetails{
			ID:              id,
			ProductID:       productID,
			Brand:           in.Brand,
			CompatibleModel: in.CompatibleModel,
			Type:            in.Type,
			Color:           in.Color,
			Material:        optional(in.Material),
		}
	case domain.DetailApparel:
		in := ApparelInput{}
		if form.ApparelDetails != nil {
			in = *form.ApparelDetails
		}
		return &domain.ApparelDetails{
			ID:               id,
			ProductID:        productID,
			Brand:            in.Brand,
			Material:         optional(in.Material),
			Color:            optional(in.Color),
			Sizes:            domain.StringList(form.SelectedSizes),
			FitTypes:         domain.StringList(form.SelectedFitTypes),
			CareInstructions: optional(in.CareInstructions),
		}
	case domain.DetailAccessories:
		in := AccessoriesInput{}
		if form.AccessoriesDetails != nil {
			in = *form.AccessoriesDetails
		}
		return &domain.AccessoriesDetails{
			ID:         id,
			ProductID:  productID,
			Brand:      optional(in.Brand),
			Material:   optional(in.Material),
			Color:      optional(in.Color),
			Dimensions: optional(in.Dimensions),
		}
	}
	return nil
}
