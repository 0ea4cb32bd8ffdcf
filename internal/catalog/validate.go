package catalog

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// FormResult is the outcome of ValidateProductForm.
type FormResult struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// Err returns a *domain.ValidationError for an invalid result, nil otherwise.
func (r FormResult) Err() error {
	if r.IsValid {
		return nil
	}
	return &domain.ValidationError{Fields: r.Errors}
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		return ValidPrice(fl.Field().String())
	})
	_ = v.RegisterValidation("int_gte0", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Field().String())
		return err == nil && n >= 0
	})
	return v
}

// maxPrice is the first amount the price columns cannot hold.
var maxPrice = decimal.New(1, 10)

// ValidPrice reports whether s is a plain positive amount below 10^10 with
// at most two decimal places. Exponent notation is refused.
func ValidPrice(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "eE") {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Round(2)) && d.LessThan(maxPrice)
}

var fieldLabels = map[string]string{
	"name":             "Product name",
	"description":      "Description",
	"price":            "Price",
	"original_price":   "Original price",
	"stock_quantity":   "Stock quantity",
	"category":         "Category",
	"subcategories":    "Subcategory",
	"brand":            "Brand",
	"compatible_model": "Compatible model",
	"type":             "Type",
	"color":            "Color",
	"sizes":            "Size",
	"fit_types":        "Fit type",
}

func message(field, tag string) string {
	label := fieldLabels[field]
	if label == "" {
		label = field
	}
	switch tag {
	case "required":
		return label + " is required"
	case "min":
		return "Select at least one " + strings.ToLower(label)
	case "price":
		return label + " must be an amount greater than 0 with at most 2 decimals"
	case "int_gte0":
		return label + " must be a whole number of 0 or more"
	}
	return label + " is invalid"
}

// ValidateProductForm checks form against the field rules for its
// category's detail type. categories is the list of root categories the
// form's category must resolve against. It has no side effects.
func ValidateProductForm(form ProductForm, categories []domain.Category) FormResult {
	form = form.Normalized()
	errs := map[string]string{}
	collect(errs, formValidator.Struct(form))

	if form.Category != "" {
		cat, ok := findRoot(form.Category, categories)
		if !ok {
			errs["category"] = "Select a valid category"
		} else {
			validateDetails(errs, form, DetailTypeOf(cat))
		}
	}
	return FormResult{IsValid: len(errs) == 0, Errors: errs}
}

func validateDetails(errs map[string]string, form ProductForm, dt domain.DetailType) {
	switch dt {
	case domain.DetailApparel:
		if form.ApparelDetails == nil {
			errs["brand"] = message("brand", "required")
		} else {
			collect(errs, formValidator.Struct(form.ApparelDetails))
		}
		if len(form.SelectedSizes) == 0 {
			errs["sizes"] = message("sizes", "min")
		}
		if len(form.SelectedFitTypes) == 0 {
			errs["fit_types"] = message("fit_types", "min")
		}
	case domain.DetailMobile:
		if form.MobileDetails == nil {
			form.MobileDetails = &MobileInput{}
		}
		collect(errs, formValidator.Struct(form.MobileDetails))
	}
}

func collect(errs map[string]string, err error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["form"] = err.Error()
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := errs[field]; !seen {
			errs[field] = message(field, fe.Tag())
		}
	}
}
