package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DetailType selects which detail table a category's products use.
// The zero value means the category carries no detail record.
type DetailType string

const (
	DetailNone        DetailType = ""
	DetailMobile      DetailType = "mobile"
	DetailApparel     DetailType = "apparel"
	DetailAccessories DetailType = "accessories"
)

func (d DetailType) Valid() bool {
	switch d {
	case DetailNone, DetailMobile, DetailApparel, DetailAccessories:
		return true
	}
	return false
}

// Value stores DetailNone as NULL.
func (d DetailType) Value() (driver.Value, error) {
	if d == DetailNone {
		return nil, nil
	}
	return string(d), nil
}

func (d *DetailType) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = DetailNone
	case string:
		*d = DetailType(v)
	case []byte:
		*d = DetailType(v)
	default:
		return fmt.Errorf("detail_type: unsupported type %T", src)
	}
	return nil
}

// Category is a root category when ParentCategoryID is nil and a
// subcategory otherwise. Subcategories inherit DetailType from the parent.
type Category struct {
	ID               string     `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Slug             string     `db:"slug" json:"slug"`
	Description      *string    `db:"description" json:"description,omitempty"`
	ImageURL         *string    `db:"image_url" json:"image_url,omitempty"`
	ParentCategoryID *string    `db:"parent_category_id" json:"parent_category_id"`
	IsActive         bool       `db:"is_active" json:"is_active"`
	DetailType       DetailType `db:"detail_type" json:"detail_type,omitempty"`
	DisplayOrder     int        `db:"display_order" json:"display_order"`
	CreatedAt        string     `db:"created_at" json:"created_at"`
	UpdatedAt        string     `db:"updated_at" json:"updated_at,omitempty"`
}

func (c Category) IsRoot() bool { return c.ParentCategoryID == nil }

// CategoryTree is a root category with its subcategories, for storefront menus.
type CategoryTree struct {
	Category
	Subcategories []Category `json:"subcategories"`
}

type Product struct {
	ID            string              `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Slug          string              `db:"slug" json:"slug"`
	Price         decimal.Decimal     `db:"price" json:"price"`
	OriginalPrice decimal.NullDecimal `db:"original_price" json:"original_price"`
	Description   string              `db:"description" json:"description"`
	StockQuantity int                 `db:"stock_quantity" json:"stock_quantity"`
	IsActive      bool                `db:"is_active" json:"is_active"`
	ShowInHero    bool                `db:"show_in_hero" json:"show_in_hero"`
	Badge         *string             `db:"badge" json:"badge,omitempty"`
	CategoryID    string              `db:"category_id" json:"category_id"`
	SubcategoryID string              `db:"subcategory_id" json:"subcategory_id"`
	ImageURL      string              `db:"image_url" json:"image_url"`
	CreatedAt     string              `db:"created_at" json:"created_at"`
	UpdatedAt     string              `db:"updated_at" json:"updated_at,omitempty"`
}

type ProductImage struct {
	ID           string  `db:"id" json:"id"`
	ProductID    string  `db:"product_id" json:"product_id"`
	ImageURL     string  `db:"image_url" json:"image_url"`
	AltText      *string `db:"alt_text" json:"alt_text,omitempty"`
	DisplayOrder int     `db:"display_order" json:"display_order"`
}

// ProductDetail is the storefront view of one product.
type ProductDetail struct {
	Product
	Images  []ProductImage `json:"images"`
	Details DetailRecord   `json:"details,omitempty"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// StringList is a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("string list: unsupported type %T", src)
	}
	if len(b) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(b, (*[]string)(l))
}
