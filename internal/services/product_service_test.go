package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/slug"
)

type env struct {
	db      *sqlx.DB
	cache   *catalog.Cache
	prods   *services.ProductService
	catalog *services.CatalogService
	inv     *services.InventoryService
	auth    *services.AuthService
	users   *repos.UserRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(repos.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cats := repos.NewCategoryRepo(db)
	prods := repos.NewProductRepo(db)
	details := repos.NewDetailRepo(db)
	images := repos.NewImageRepo(db)
	users := repos.NewUserRepo(db)
	cache := catalog.NewCache(cats, time.Minute)

	return &env{
		db:      db,
		cache:   cache,
		prods:   services.NewProductService(db, prods, details, images, cache),
		catalog: services.NewCatalogService(cats, prods, details, images, cache),
		inv:     services.NewInventoryService(prods),
		auth:    services.NewAuthService(users, "test-secret", time.Hour),
		users:   users,
	}
}

func (e *env) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := e.db.Get(&n, query, args...); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func apparelRequest(name string) services.CreateProductRequest {
	return services.CreateProductRequest{
		Product: catalog.ProductForm{
			Name:             name,
			Description:      "Warm fleece",
			Price:            "999",
			StockQuantity:    "7",
			Category:         "Men's Clothing",
			Subcategories:    []string{"Men's Tops"},
			ApparelDetails:   &catalog.ApparelInput{Brand: "Acme", Color: "Blue"},
			SelectedSizes:    []string{"M", "L"},
			SelectedFitTypes: []string{"Regular"},
		},
		Images: []catalog.UploadedImage{
			{URL: "https://cdn.example/hoodie-front.jpg", AltText: "front"},
			{URL: "  "},
			{URL: "https://cdn.example/hoodie-back.jpg"},
		},
	}
}

func TestCreateProduct_BlueHoodie(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p, err := e.prods.CreateProduct(ctx, apparelRequest("Blue Hoodie"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Slug != "blue-hoodie" || p.CategoryID != "cat-mens-clothing" || p.SubcategoryID != "sub-mens-tops" {
		t.Fatalf("unexpected product %+v", p)
	}
	if p.ImageURL != "https://cdn.example/hoodie-front.jpg" || p.StockQuantity != 7 || !p.IsActive {
		t.Fatalf("unexpected product fields %+v", p)
	}

	if n := e.count(t, `SELECT COUNT(*) FROM products WHERE slug = 'blue-hoodie'`); n != 1 {
		t.Fatalf("want one product row, got %d", n)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM apparel_details WHERE product_id = ?`, p.ID); n != 1 {
		t.Fatalf("want one apparel_details row, got %d", n)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM mobile_details`) + e.count(t, `SELECT COUNT(*) FROM accessories_details`); n != 0 {
		t.Fatalf("no other detail rows expected, got %d", n)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM product_images WHERE product_id = ?`, p.ID); n != 2 {
		t.Fatalf("blank image should be dropped, got %d rows", n)
	}

	detail, err := e.catalog.ProductDetail(ctx, "blue-hoodie")
	if err != nil {
		t.Fatal(err)
	}
	ad, ok := detail.Details.(*domain.ApparelDetails)
	if !ok || ad.Brand != "Acme" || len(ad.Sizes) != 2 || len(ad.FitTypes) != 1 {
		t.Fatalf("unexpected details %+v", detail.Details)
	}
	if len(detail.Images) != 2 || detail.Images[0].DisplayOrder != 0 || detail.Images[1].DisplayOrder != 1 {
		t.Fatalf("unexpected images %+v", detail.Images)
	}
}

func TestCreateProduct_SlugSuffix(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		p, err := e.prods.CreateProduct(ctx, apparelRequest("Red Shirt"))
		if err != nil {
			t.Fatal(err)
		}
		slugs = append(slugs, p.Slug)
	}
	want := []string{"red-shirt", "red-shirt-1", "red-shirt-2"}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("want %v, got %v", want, slugs)
		}
	}
}

func TestCreateProduct_ConcurrentSameName(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		slugs []string
		errs  []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := e.prods.CreateProduct(ctx, apparelRequest("Red Shirt"))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			slugs = append(slugs, p.Slug)
		}()
	}
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("create failed: %v", errs)
	}
	sort.Strings(slugs)
	if len(slugs) != 2 || slugs[0] != "red-shirt" || slugs[1] != "red-shirt-1" {
		t.Fatalf("want [red-shirt red-shirt-1], got %v", slugs)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM apparel_details`); n != 2 {
		t.Fatalf("want two detail rows, got %d", n)
	}
}

// staleProber answers that every slug in stale is free, whatever the store
// holds, as a probe racing a concurrent writer would.
func staleProber(store slug.Prober, stale ...string) slug.Prober {
	return slug.ProberFunc(func(ctx context.Context, s string) (bool, error) {
		for _, st := range stale {
			if s == st {
				return false, nil
			}
		}
		return store.SlugExists(ctx, s)
	})
}

func TestCreateProduct_SlugConflictRetries(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	core, logs := observer.New(zapcore.InfoLevel)
	t.Cleanup(applog.Use(zap.New(core)))

	if _, err := e.prods.CreateProduct(ctx, apparelRequest("Red Shirt")); err != nil {
		t.Fatal(err)
	}

	store := e.prods.Slugs
	e.prods.Slugs = staleProber(store, "red-shirt")
	p, err := e.prods.CreateProduct(ctx, apparelRequest("Red Shirt"))
	if err != nil {
		t.Fatalf("create after lost race: %v", err)
	}
	if p.Slug != "red-shirt-1" {
		t.Fatalf("want red-shirt-1, got %s", p.Slug)
	}
	if n := len(logs.FilterMessage("product.create.slug.retry").All()); n != 1 {
		t.Fatalf("want one retry logged, got %d", n)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM products`); n != 2 {
		t.Fatalf("want two products, got %d", n)
	}
}

func TestCreateProduct_SlugRetriesAreBounded(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := e.prods.CreateProduct(ctx, apparelRequest("Red Shirt")); err != nil {
			t.Fatal(err)
		}
	}

	e.prods.Slugs = slug.ProberFunc(func(context.Context, string) (bool, error) { return false, nil })
	_, err := e.prods.CreateProduct(ctx, apparelRequest("Red Shirt"))
	var swe *domain.StoreWriteError
	if !errors.As(err, &swe) || swe.Step != domain.StepProduct {
		t.Fatalf("want product-step StoreWriteError, got %v", err)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM products`); n != 5 {
		t.Fatalf("want five products, got %d", n)
	}
}

func TestCreateProduct_NameWithoutSlug(t *testing.T) {
	e := newEnv(t)
	_, err := e.prods.CreateProduct(context.Background(), apparelRequest("!!!"))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["name"] == "" {
		t.Fatalf("want name validation error, got %v", err)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM products`); n != 0 {
		t.Fatalf("want no products, got %d", n)
	}
}

func TestCreateProduct_DetailFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	_, err := e.db.Exec(`
	CREATE TRIGGER fail_apparel BEFORE INSERT ON apparel_details
	BEGIN SELECT RAISE(ABORT, 'forced failure'); END;`)
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.prods.CreateProduct(context.Background(), apparelRequest("Green Jacket"))
	var swe *domain.StoreWriteError
	if !errors.As(err, &swe) || swe.Step != domain.StepDetails {
		t.Fatalf("want StoreWriteError at details, got %v", err)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM products`); n != 0 {
		t.Fatalf("no product row may survive, got %d", n)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM product_images`); n != 0 {
		t.Fatalf("no image row may survive, got %d", n)
	}
}

func TestCreateProduct_ValidationNeverTouchesStore(t *testing.T) {
	e := newEnv(t)
	req := apparelRequest("Blue Hoodie")
	req.Product.Price = "-5"
	req.Product.SelectedSizes = nil

	_, err := e.prods.CreateProduct(context.Background(), req)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if verr.Fields["price"] == "" || verr.Fields["sizes"] == "" {
		t.Fatalf("missing field errors: %+v", verr.Fields)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM products`); n != 0 {
		t.Fatalf("validation failure wrote %d products", n)
	}
}

func TestCreateProduct_ResolutionErrors(t *testing.T) {
	e := newEnv(t)
	req := apparelRequest("Blue Hoodie")
	req.Product.Subcategories = []string{"Bags"} // belongs to Accessories

	_, err := e.prods.CreateProduct(context.Background(), req)
	if !errors.Is(err, domain.ErrSubcategoryNotFound) || !errors.Is(err, domain.ErrResolution) {
		t.Fatalf("want subcategory resolution error, got %v", err)
	}

	req.Product.Category = "Garden"
	_, err = e.prods.CreateProduct(context.Background(), req)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["category"] == "" {
		t.Fatalf("unknown category should fail validation, got %v", err)
	}
}

func TestCreateProduct_NullDetailType(t *testing.T) {
	e := newEnv(t)
	p, err := e.prods.CreateProduct(context.Background(), services.CreateProductRequest{
		Product: catalog.ProductForm{
			Name:          "Gift Card 50",
			Description:   "Store credit",
			Price:         "50",
			Category:      "gift-cards",
			Subcategories: []string{"digital"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.ImageURL != "" || p.StockQuantity != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	total := e.count(t, `SELECT COUNT(*) FROM mobile_details`) +
		e.count(t, `SELECT COUNT(*) FROM apparel_details`) +
		e.count(t, `SELECT COUNT(*) FROM accessories_details`)
	if total != 0 {
		t.Fatalf("no detail row expected, got %d", total)
	}
}

func TestUpdateProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.prods.CreateProduct(ctx, apparelRequest("Blue Hoodie"))
	if err != nil {
		t.Fatal(err)
	}

	name := "Navy Hoodie"
	price := catalog.NumberField("79.50")
	imgs := []catalog.UploadedImage{{URL: "https://cdn.example/navy.jpg"}}
	got, err := e.prods.UpdateProduct(ctx, p.ID, catalog.ProductPatch{Name: &name, Price: &price, Images: &imgs})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Navy Hoodie" || got.Slug != "blue-hoodie" || got.Price.String() != "79.5" {
		t.Fatalf("unexpected update %+v", got)
	}
	if got.ImageURL != "https://cdn.example/navy.jpg" {
		t.Fatalf("thumbnail not refreshed: %q", got.ImageURL)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM product_images WHERE product_id = ?`, p.ID); n != 1 {
		t.Fatalf("image set not replaced, %d rows", n)
	}

	other := "Accessories"
	_, err = e.prods.UpdateProduct(ctx, p.ID, catalog.ProductPatch{Category: &other})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["category"] == "" {
		t.Fatalf("category change should be refused, got %v", err)
	}
	same := "mens-clothing"
	if _, err := e.prods.UpdateProduct(ctx, p.ID, catalog.ProductPatch{Category: &same}); err != nil {
		t.Fatalf("unchanged category should pass: %v", err)
	}
	if _, err := e.prods.UpdateProduct(ctx, "missing", catalog.ProductPatch{Name: &name}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUpdateProduct_ForeignImageIDs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, err := e.prods.CreateProduct(ctx, apparelRequest("Blue Hoodie"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.prods.CreateProduct(ctx, apparelRequest("Green Hoodie"))
	if err != nil {
		t.Fatal(err)
	}
	var own, foreign string
	if err := e.db.Get(&own, `SELECT id FROM product_images WHERE product_id = ? ORDER BY display_order LIMIT 1`, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := e.db.Get(&foreign, `SELECT id FROM product_images WHERE product_id = ? ORDER BY display_order LIMIT 1`, b.ID); err != nil {
		t.Fatal(err)
	}

	imgs := []catalog.UploadedImage{
		{ID: own, URL: "https://cdn.example/kept.jpg"},
		{ID: own, URL: "https://cdn.example/repeat.jpg"},
		{ID: foreign, URL: "https://cdn.example/borrowed.jpg"},
	}
	if _, err := e.prods.UpdateProduct(ctx, a.ID, catalog.ProductPatch{Images: &imgs}); err != nil {
		t.Fatalf("update with foreign image ids: %v", err)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM product_images WHERE product_id = ?`, a.ID); n != 3 {
		t.Fatalf("want 3 images on a, got %d", n)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM product_images WHERE id = ? AND product_id = ?`, own, a.ID); n != 1 {
		t.Fatal("owned image id should be kept")
	}
	if n := e.count(t, `SELECT COUNT(*) FROM product_images WHERE id = ? AND product_id = ?`, foreign, b.ID); n != 1 {
		t.Fatal("other product's image must stay with it")
	}
}

func TestDeleteProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.prods.CreateProduct(ctx, apparelRequest("Blue Hoodie"))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.prods.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	for _, table := range []string{"products", "apparel_details", "product_images"} {
		if n := e.count(t, `SELECT COUNT(*) FROM `+table); n != 0 {
			t.Fatalf("%s has %d rows left", table, n)
		}
	}
	if err := e.prods.DeleteProduct(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
