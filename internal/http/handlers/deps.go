package handlers

import (
	"github.com/jmoiron/sqlx"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type Deps struct {
	Auth             *services.AuthService
	Cache            *catalog.Cache
	AuthHandler      *AuthHandler
	CategoryHandler  *CategoryHandler
	ProductHandler   *ProductHandler
	SearchHandler    *SearchHandler
	InventoryHandler *InventoryHandler
	AdminHandler     *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	detailRepo := repos.NewDetailRepo(db)
	imageRepo := repos.NewImageRepo(db)
	userRepo := repos.NewUserRepo(db)

	cache := catalog.NewCache(catRepo, cfg.CatalogCacheTTL)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, detailRepo, imageRepo, cache)
	productSvc := services.NewProductService(db, prodRepo, detailRepo, imageRepo, cache)
	invSvc := services.NewInventoryService(prodRepo)
	authSvc := services.NewAuthService(userRepo, cfg.SessionSecret, cfg.SessionTTL)

	return &Deps{
		Auth:             authSvc,
		Cache:            cache,
		AuthHandler:      &AuthHandler{Auth: authSvc, Secure: cfg.SecureCookies},
		CategoryHandler:  &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		AdminHandler: &AdminHandler{
			Products: productSvc,
			Catalog:  catalogSvc,
			Inv:      invSvc,
			Cache:    cache,
			Timeout:  cfg.AdminWriteTimeout,
		},
	}
}
