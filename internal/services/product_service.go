package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/slug"
)

// slugAttempts bounds how often a submission re-probes after losing a slug
// race to a concurrent writer.
const slugAttempts = 5

// CreateProductRequest is the admin submission: the form plus the images
// already uploaded to object storage.
type CreateProductRequest struct {
	Product catalog.ProductForm     `json:"product"`
	Images  []catalog.UploadedImage `json:"images"`
}

type ProductService struct {
	DB      *sqlx.DB
	Prods   *repos.ProductRepo
	Details *repos.DetailRepo
	Images  *repos.ImageRepo
	Cache   *catalog.Cache
	// Slugs answers slug probes. It defaults to Prods.
	Slugs slug.Prober
}

func NewProductService(db *sqlx.DB, prods *repos.ProductRepo, details *repos.DetailRepo, images *repos.ImageRepo, cache *catalog.Cache) *ProductService {
	return &ProductService{DB: db, Prods: prods, Details: details, Images: images, Cache: cache, Slugs: prods}
}

// CreateProduct validates the form, picks a unique slug, resolves the
// category ids and writes the product, its detail record and its images in
// one transaction.
func (s *ProductService) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	snap, err := s.Cache.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if res := catalog.ValidateProductForm(req.Product, snap.Categories); !res.IsValid {
		return nil, res.Err()
	}
	form := req.Product.Normalized()

	candidate, suffix, err := slug.Unique(ctx, form.Name, s.Slugs)
	if errors.Is(err, domain.ErrEmptySlug) {
		return nil, &domain.ValidationError{Fields: map[string]string{"name": "Product name must contain letters or digits"}}
	}
	if err != nil {
		return nil, err
	}
	base := slug.Generate(form.Name)

	ids := catalog.ResolveCategoryIDs(form.Category, form.Subcategories, snap.Categories, snap.Subcategories)
	if err := ids.Err(); err != nil {
		return nil, err
	}
	cat, _ := catalog.FindCategory(*ids.CategoryID, snap.Categories)

	p, err := productFromForm(form)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"price": err.Error()}}
	}
	p.ID = uuid.NewString()
	p.CategoryID = *ids.CategoryID
	p.SubcategoryID = *ids.SubcategoryID

	payloads := catalog.MapProductImagesForAPI(req.Images, false)
	p.ImageURL = catalog.Thumbnail(payloads)
	images := imageRows(p.ID, payloads)
	detail := catalog.BuildDetail(p.ID, catalog.DetailTypeOf(cat), form)

	for attempt := 1; ; attempt++ {
		p.Slug = candidate
		err = s.write(ctx, p, detail, images)
		if err == nil {
			break
		}
		if attempt >= slugAttempts || !isSlugConflict(err) {
			return nil, err
		}
		applog.L().Info("product.create.slug.retry",
			zap.String("slug", candidate), zap.Int("attempt", attempt))
		candidate, suffix, err = slug.NextFree(ctx, base, suffix+1, s.Slugs)
		if err != nil {
			return nil, err
		}
	}
	return &p, nil
}

func (s *ProductService) write(ctx context.Context, p domain.Product, detail domain.DetailRecord, images []domain.ProductImage) error {
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Prods.Insert(ctx, tx, p); err != nil {
			return &domain.StoreWriteError{Step: domain.StepProduct, Err: err}
		}
		if detail != nil {
			if err := s.Details.Insert(ctx, tx, detail); err != nil {
				return &domain.StoreWriteError{Step: domain.StepDetails, Err: err}
			}
		}
		if err := s.Images.InsertAll(ctx, tx, images); err != nil {
			return &domain.StoreWriteError{Step: domain.StepImages, Err: err}
		}
		return nil
	})
	var swe *domain.StoreWriteError
	if err != nil && !errors.As(err, &swe) {
		return &domain.StoreWriteError{Step: domain.StepCommit, Err: err}
	}
	return err
}

func isSlugConflict(err error) bool {
	var swe *domain.StoreWriteError
	return errors.As(err, &swe) && swe.Step == domain.StepProduct && repos.IsSlugConflict(swe.Err)
}

// UpdateProduct applies a partial edit. The slug and category are stable;
// when Images is present the image set is replaced as a whole.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (*domain.Product, error) {
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := s.Cache.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if res := catalog.ValidateProductPatch(patch, p.CategoryID, snap.Categories); !res.IsValid {
		return nil, res.Err()
	}

	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		p.Price = decimal.RequireFromString(strings.TrimSpace(string(*patch.Price)))
	}
	if patch.OriginalPrice != nil {
		p.OriginalPrice = nullDecimal(string(*patch.OriginalPrice))
	}
	if patch.StockQuantity != nil {
		p.StockQuantity, _ = strconv.Atoi(strings.TrimSpace(string(*patch.StockQuantity)))
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.ShowInHero != nil {
		p.ShowInHero = *patch.ShowInHero
	}
	if patch.Badge != nil {
		p.Badge = optionalString(*patch.Badge)
	}

	var images []domain.ProductImage
	if patch.Images != nil {
		current, err := s.Images.ListByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		owned := make(map[string]bool, len(current))
		for _, img := range current {
			owned[img.ID] = true
		}
		payloads := catalog.MapProductImagesForAPI(*patch.Images, true)
		for i := range payloads {
			if owned[payloads[i].ID] {
				delete(owned, payloads[i].ID)
			} else {
				payloads[i].ID = ""
			}
		}
		p.ImageURL = catalog.Thumbnail(payloads)
		images = imageRows(p.ID, payloads)
	}

	err = repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Prods.Update(ctx, tx, p); err != nil {
			return err
		}
		if patch.Images == nil {
			return nil
		}
		if err := s.Images.DeleteByProduct(ctx, tx, p.ID); err != nil {
			return err
		}
		return s.Images.InsertAll(ctx, tx, images)
	})
	if err != nil {
		return nil, err
	}
	got, err := s.Prods.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &got, nil
}

// DeleteProduct removes the product with its images, detail record, reviews,
// wishlist entries and cart lines.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		return s.Prods.DeleteCascade(ctx, tx, id)
	})
}

func productFromForm(form catalog.ProductForm) (domain.Product, error) {
	price, err := decimal.NewFromString(string(form.Price))
	if err != nil {
		return domain.Product{}, err
	}
	stock := 0
	if form.StockQuantity != "" {
		stock, _ = strconv.Atoi(string(form.StockQuantity))
	}
	active := true
	if form.IsActive != nil {
		active = *form.IsActive
	}
	return domain.Product{
		Name:          form.Name,
		Price:         price,
		OriginalPrice: nullDecimal(string(form.OriginalPrice)),
		Description:   form.Description,
		StockQuantity: stock,
		IsActive:      active,
		ShowInHero:    form.ShowInHero,
		Badge:         optionalString(form.Badge),
	}, nil
}

// imageRows keeps payload ids and mints new ones where none is set. Edit
// callers clear ids the product does not own first.
func imageRows(productID string, payloads []catalog.ImagePayload) []domain.ProductImage {
	out := make([]domain.ProductImage, 0, len(payloads))
	for _, img := range payloads {
		id := img.ID
		if id == "" {
			id = uuid.NewString()
		}
		out = append(out, domain.ProductImage{
			ID:           id,
			ProductID:    productID,
			ImageURL:     img.ImageURL,
			AltText:      img.AltText,
			DisplayOrder: img.DisplayOrder,
		})
	}
	return out
}

func nullDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
