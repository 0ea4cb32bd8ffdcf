// Package catalog holds the pure pieces of product creation: form checks,
// category resolution, detail-type dispatch and image mapping.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NumberField holds a numeric form input as typed. It accepts a JSON number
// or a JSON string so that "999" and 999 decode the same way.
type NumberField string

func (n *NumberField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberField(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("number field: %w", err)
	}
	*n = NumberField(num.String())
	return nil
}

type MobileInput struct {
	Brand           string `json:"brand" validate:"required"`
	CompatibleModel string `json:"compatible_model" validate:"required"`
	Type            string `json:"type" validate:"required"`
	Color           string `json:"color" validate:"required"`
	Material        string `json:"material"`
}

type ApparelInput struct {
	Brand            string `json:"brand" validate:"required"`
	Material         string `json:"material"`
	Color            string `json:"color"`
	CareInstructions string `json:"care_instructions"`
}

type AccessoriesInput struct {
	Brand      string `json:"brand"`
	Material   string `json:"material"`
	Color      string `json:"color"`
	Dimensions string `json:"dimensions"`
}

// ProductForm is the admin product form as submitted.
type ProductForm struct {
	Name          string      `json:"name" validate:"required"`
	Description   string      `json:"description" validate:"required"`
	Price         NumberField `json:"price" validate:"required,price"`
	OriginalPrice NumberField `json:"original_price" validate:"omitempty,price"`
	StockQuantity NumberField `json:"stock_quantity" validate:"omitempty,int_gte0"`
	IsActive      *bool       `json:"is_active"`
	ShowInHero    bool        `json:"show_in_hero"`
	Badge         string      `json:"badge"`
	Category      string      `json:"category" validate:"required"`
	Subcategories []string    `json:"subcategories" validate:"min=1"`

	MobileDetails      *MobileInput      `json:"mobileDetails,omitempty" validate:"-"`
	ApparelDetails     *ApparelInput     `json:"apparelDetails,omitempty" validate:"-"`
	AccessoriesDetails *AccessoriesInput `json:"accessoriesDetails,omitempty" validate:"-"`
	SelectedSizes      []string          `json:"selectedSizes"`
	SelectedFitTypes   []string          `json:"selectedFitTypes"`
}

// Normalized returns a copy with surrounding whitespace removed from the
// text inputs and blank subcategory entries dropped.
func (f ProductForm) Normalized() ProductForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Price = NumberField(strings.TrimSpace(string(f.Price)))
	f.OriginalPrice = NumberField(strings.TrimSpace(string(f.OriginalPrice)))
	f.StockQuantity = NumberField(strings.TrimSpace(string(f.StockQuantity)))
	f.Badge = strings.TrimSpace(f.Badge)
	f.Category = strings.TrimSpace(f.Category)
	f.Subcategories = trimAll(f.Subcategories)
	f.SelectedSizes = trimAll(f.SelectedSizes)
	f.SelectedFitTypes = trimAll(f.SelectedFitTypes)
	if f.MobileDetails != nil {
		m := *f.MobileDetails
		m.Brand = strings.TrimSpace(m.Brand)
		m.CompatibleModel = strings.TrimSpace(m.CompatibleModel)
		m.Type = strings.TrimSpace(m.Type)
		m.Color = strings.TrimSpace(m.Color)
		m.Material = strings.TrimSpace(m.Material)
		f.MobileDetails = &m
	}
	if f.ApparelDetails != nil {
		a := *f.ApparelDetails
		a.Brand = strings.TrimSpace(a.Brand)
		a.Material = strings.TrimSpace(a.Material)
		a.Color = strings.TrimSpace(a.Color)
		a.CareInstructions = strings.TrimSpace(a.CareInstructions)
		f.ApparelDetails = &a
	}
	if f.AccessoriesDetails != nil {
		a := *f.AccessoriesDetails
		a.Brand = strings.TrimSpace(a.Brand)
		a.Material = strings.TrimSpace(a.Material)
		a.Color = strings.TrimSpace(a.Color)
		a.Dimensions = strings.TrimSpace(a.Dimensions)
		f.AccessoriesDetails = &a
	}
	return f
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
