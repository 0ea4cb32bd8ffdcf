package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/slug"
)

type CatalogService struct {
	Cats    *repos.CategoryRepo
	Prods   *repos.ProductRepo
	Details *repos.DetailRepo
	Images  *repos.ImageRepo
	Cache   *catalog.Cache
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo, details *repos.DetailRepo, images *repos.ImageRepo, cache *catalog.Cache) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods, Details: details, Images: images, Cache: cache}
}

// CategoryTree returns the active root categories with their active
// subcategories, in menu order.
func (s *CatalogService) CategoryTree(ctx context.Context) ([]domain.CategoryTree, error) {
	snap, err := s.Cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.CategoryTree{}
	for _, c := range snap.Categories {
		if !c.IsActive {
			continue
		}
		t := domain.CategoryTree{Category: c, Subcategories: []domain.Category{}}
		for _, sc := range snap.Subcategories {
			if sc.IsActive && sc.ParentCategoryID != nil && *sc.ParentCategoryID == c.ID {
				t.Subcategories = append(t.Subcategories, sc)
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *CatalogService) ListProductsByCategory(ctx context.Context, categorySlug string, page, pageSize int) ([]domain.Product, error) {
	cat, err := s.Cats.BySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	if !cat.IsActive {
		return nil, domain.ErrNotFound
	}
	limit, offset := paging(page, pageSize)
	return s.Prods.ListByCategory(ctx, cat.ID, limit, offset)
}

func (s *CatalogService) Search(ctx context.Context, q string, page, pageSize int) ([]domain.Product, error) {
	limit, offset := paging(page, pageSize)
	return s.Prods.Search(ctx, q, limit, offset)
}

func (s *CatalogService) Hero(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 || limit > 24 {
		limit = 8
	}
	return s.Prods.ListHero(ctx, limit)
}

// ProductDetail returns an active product with its ordered images and the
// detail record its category type calls for.
func (s *CatalogService) ProductDetail(ctx context.Context, productSlug string) (domain.ProductDetail, error) {
	p, err := s.Prods.BySlug(ctx, productSlug)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	images, err := s.Images.ListByProduct(ctx, p.ID)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	cat, err := s.Cats.Get(ctx, p.CategoryID)
	if err != nil {
		return domain.ProductDetail{}, err
	}
	details, err := s.Details.ForProduct(ctx, p.ID, catalog.DetailTypeOf(cat))
	if err != nil {
		return domain.ProductDetail{}, err
	}
	return domain.ProductDetail{Product: p, Images: images, Details: details}, nil
}

// CategoryInput is the admin request to create a root category or a
// subcategory.
type CategoryInput struct {
	Name         string            `json:"name"`
	Slug         string            `json:"slug"`
	Description  string            `json:"description"`
	ImageURL     string            `json:"image_url"`
	ParentID     string            `json:"parent_category_id"`
	DetailType   domain.DetailType `json:"detail_type"`
	DisplayOrder int               `json:"display_order"`
}

// CreateCategory validates in and stores it. Subcategories never carry a
// detail type of their own.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.ParentID = strings.TrimSpace(in.ParentID)

	errs := map[string]string{}
	if in.Name == "" {
		errs["name"] = "Name is required"
	}
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
		if in.Slug == "" && in.Name != "" {
			errs["name"] = "Name must contain letters or digits"
		}
	} else if !slug.Valid(in.Slug) {
		errs["slug"] = "Slug may contain lowercase letters, digits and hyphens only"
	}
	if !in.DetailType.Valid() {
		errs["detail_type"] = "Detail type must be mobile, apparel or accessories"
	}
	var parent *string
	if in.ParentID != "" {
		if in.DetailType != domain.DetailNone {
			errs["detail_type"] = "Subcategories inherit the detail type of their parent"
		}
		p, err := s.Cats.Get(ctx, in.ParentID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			errs["parent_category_id"] = "Parent category not found"
		case err != nil:
			return domain.Category{}, err
		case !p.IsRoot():
			errs["parent_category_id"] = "Parent must be a root category"
		}
		parent = &in.ParentID
	}
	if len(errs) > 0 {
		return domain.Category{}, &domain.ValidationError{Fields: errs}
	}
	taken, err := s.Cats.SlugExists(ctx, in.Slug)
	if err != nil {
		return domain.Category{}, err
	}
	if taken {
		return domain.Category{}, fmt.Errorf("%w: slug %q is taken", domain.ErrConflict, in.Slug)
	}

	c := domain.Category{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Slug:             in.Slug,
		Description:      optionalString(in.Description),
		ImageURL:         optionalString(in.ImageURL),
		ParentCategoryID: parent,
		IsActive:         true,
		DetailType:       in.DetailType,
		DisplayOrder:     in.DisplayOrder,
	}
	if err := s.Cats.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Category{}, fmt.Errorf("%w: slug %q is taken", domain.ErrConflict, c.Slug)
		}
		return domain.Category{}, err
	}
	s.Cache.Invalidate()
	return s.Cats.Get(ctx, c.ID)
}

func (s *CatalogService) SetCategoryActive(ctx context.Context, id string, active bool) error {
	if err := s.Cats.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.Cache.Invalidate()
	return nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.Cats.Delete(ctx, id); err != nil {
		return err
	}
	s.Cache.Invalidate()
	return nil
}

func paging(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 12
	}
	return pageSize, (page - 1) * pageSize
}
