package domain

// DetailRecord is one of the category-typed detail rows. Exactly one exists
// per product whose category has a non-null detail type.
type DetailRecord interface {
	DetailType() DetailType
}

type MobileDetails struct {
	ID              string  `db:"id" json:"id"`
	ProductID       string  `db:"product_id" json:"product_id"`
	Brand           string  `db:"brand" json:"brand"`
	CompatibleModel string  `db:"compatible_model" json:"compatible_model"`
	Type            string  `db:"type" json:"type"`
	Color           string  `db:"color" json:"color"`
	Material        *string `db:"material" json:"material,omitempty"`
}

func (*MobileDetails) DetailType() DetailType { return DetailMobile }

type ApparelDetails struct {
	ID               string     `db:"id" json:"id"`
	ProductID        string     `db:"product_id" json:"product_id"`
	Brand            string     `db:"brand" json:"brand"`
	Material         *string    `db:"material" json:"material,omitempty"`
	Color            *string    `db:"color" json:"color,omitempty"`
	Sizes            StringList `db:"sizes" json:"sizes"`
	FitTypes         StringList `db:"fit_types" json:"fit_types"`
	CareInstructions *string    `db:"care_instructions" json:"care_instructions,omitempty"`
}

func (*ApparelDetails) DetailType() DetailType { return DetailApparel }

type AccessoriesDetails struct {
	ID         string  `db:"id" json:"id"`
	ProductID  string  `db:"product_id" json:"product_id"`
	Brand      *string `db:"brand" json:"brand,omitempty"`
	Material   *string `db:"material" json:"material,omitempty"`
	Color      *string `db:"color" json:"color,omitempty"`
	Dimensions *string `db:"dimensions" json:"dimensions,omitempty"`
}

func (*AccessoriesDetails) DetailType() DetailType { return DetailAccessories }
