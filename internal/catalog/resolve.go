package catalog

import "storefront/internal/domain"

// Resolution holds the ids a form's category selection maps to. A nil id
// means the selection did not match anything.
type Resolution struct {
	CategoryID    *string
	SubcategoryID *string
}

// Err reports the first unresolved id.
func (r Resolution) Err() error {
	if r.CategoryID == nil {
		return domain.ErrCategoryNotFound
	}
	if r.SubcategoryID == nil {
		return domain.ErrSubcategoryNotFound
	}
	return nil
}

// ResolveCategoryIDs maps the selected category and the first selected
// subcategory to ids using lists already in memory. A value matches an entry
// by exact name or exact slug. Only subcategories of the resolved category
// are considered, and when two share a name the first in list order wins.
func ResolveCategoryIDs(categoryName string, subcategoryNames []string, categories, subcategories []domain.Category) Resolution {
	var res Resolution
	cat, ok := findRoot(categoryName, categories)
	if !ok {
		return res
	}
	id := cat.ID
	res.CategoryID = &id

	if len(subcategoryNames) == 0 {
		return res
	}
	want := subcategoryNames[0]
	for _, sc := range subcategories {
		if sc.ParentCategoryID == nil || *sc.ParentCategoryID != cat.ID {
			continue
		}
		if matches(sc, want) {
			sid := sc.ID
			res.SubcategoryID = &sid
			break
		}
	}
	return res
}

func findRoot(v string, categories []domain.Category) (domain.Category, bool) {
	if v == "" {
		return domain.Category{}, false
	}
	for _, c := range categories {
		if c.IsRoot() && matches(c, v) {
			return c, true
		}
	}
	return domain.Category{}, false
}

// FindCategory looks up a root category by id, name or slug.
func FindCategory(v string, categories []domain.Category) (domain.Category, bool) {
	for _, c := range categories {
		if c.IsRoot() && c.ID == v {
			return c, true
		}
	}
	return findRoot(v, categories)
}

func matches(c domain.Category, v string) bool {
	return c.Name == v || c.Slug == v
}
