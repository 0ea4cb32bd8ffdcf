package repos

import (
	"context"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "storefront/internal/log"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// OpenDB connects, applies the schema and seeds baseline rows. It is safe to
// call on every start.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Connect opens the pool without touching the schema.
func Connect(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// One connection: an in-memory database lives and dies with it, and
		// SQLite serializes writers anyway.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the dialect schema and idempotent seeds.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if err := ensureSchema(ctx, db); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	if err := seedCategories(ctx, db); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := seedUsers(ctx, db); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	file := "schema/sqlite.sql"
	if db.DriverName() == DriverPostgres {
		file = "schema/postgres.sql"
	}
	ddl, err := schemaFS.ReadFile(file)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(ddl))
	return err
}

type seedCategory struct {
	ID, Name, Slug, Parent, DetailType string
	Order                              int
}

// seedCategories ensures the baseline catalog tree exists (idempotent).
func seedCategories(ctx context.Context, db *sqlx.DB) error {
	cats := []seedCategory{
		{ID: "cat-mens-clothing", Name: "Men's Clothing", Slug: "mens-clothing", DetailType: "apparel", Order: 1},
		{ID: "cat-mobile-accessories", Name: "Mobile Accessories", Slug: "mobile-accessories", DetailType: "mobile", Order: 2},
		{ID: "cat-accessories", Name: "Accessories", Slug: "accessories", DetailType: "accessories", Order: 3},
		{ID: "cat-gift-cards", Name: "Gift Cards", Slug: "gift-cards", Order: 4},

		{ID: "sub-mens-tops", Name: "Men's Tops", Slug: "mens-tops", Parent: "cat-mens-clothing", Order: 1},
		{ID: "sub-mens-bottoms", Name: "Men's Bottoms", Slug: "mens-bottoms", Parent: "cat-mens-clothing", Order: 2},
		{ID: "sub-phone-cases", Name: "Phone Cases", Slug: "phone-cases", Parent: "cat-mobile-accessories", Order: 1},
		{ID: "sub-chargers", Name: "Chargers", Slug: "chargers", Parent: "cat-mobile-accessories", Order: 2},
		{ID: "sub-bags", Name: "Bags", Slug: "bags", Parent: "cat-accessories", Order: 1},
		{ID: "sub-digital", Name: "Digital", Slug: "digital", Parent: "cat-gift-cards", Order: 1},
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := tx.Rebind(`
		INSERT INTO categories(id, name, slug, parent_category_id, is_active, detail_type, display_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`)
	for _, c := range cats {
		var parent *string
		if c.Parent != "" {
			parent = &c.Parent
		}
		var dt *string
		if c.DetailType != "" {
			dt = &c.DetailType
		}
		if _, err := tx.ExecContext(ctx, q, c.ID, c.Name, c.Slug, parent, true, dt, c.Order); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedUsers ensures one ADMIN and one USER exist (idempotent).
func seedUsers(ctx context.Context, db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) (u, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}, err
	}

	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	applog.L().Info("seed.users")

	admin, err := mk("u-admin", "admin@storefront.test", "Admin", "ADMIN", "Passw0rd!")
	if err != nil {
		return err
	}
	shopper, err := mk("u-alice", "alice@storefront.test", "Alice", "USER", "Passw0rd!")
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := tx.Rebind(`
		INSERT INTO users(id, email, name, password_hash, role)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING`)
	for _, x := range []u{admin, shopper} {
		if _, err := tx.ExecContext(ctx, q, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}
	return tx.Commit()
}
