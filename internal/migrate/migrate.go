package migrate

import (
	"context"

	"github.com/fayiz2005/Kaze/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, pg_trgm
	CreateChecks           bool // CHECK-constraint'ы (в т.ч. stock >= 0)
	CreateIndexes          bool // индексы и UNIQUE
	CreateUpdatedAtTrigger bool // триггер updated_at
	CreateSearchIndexes    bool // GIN trgm для поиска по name
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
		CreateSearchIndexes:    true,
	}
}

type step struct {
	name string
	sql  string
}

func exec(ctx context.Context, db *gorm.DB, log *zap.Logger, steps []step) error {
	for _, s := range steps {
		if err := db.WithContext(ctx).Exec(s.sql).Error; err != nil {
			log.Error("migration step failed", zap.String("step", s.name), zap.Error(err))
			return err
		}
	}
	return nil
}

func MigrateStoreDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы магазина")

	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := exec(ctx, db, log, []step{
			{"pgcrypto", `CREATE EXTENSION IF NOT EXISTS pgcrypto`},
			{"pg_trgm", `CREATE EXTENSION IF NOT EXISTS pg_trgm`},
		}); err != nil {
			return err
		}
	}

	log.Info("Создание таблиц")
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
		&models.User{},
		&models.AdminInvite{},
		&models.PasswordResetToken{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := exec(ctx, db, log, []step{{"updated_at triggers", `
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_users_updated ON users;
CREATE TRIGGER trg_users_updated BEFORE UPDATE ON users
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`}}); err != nil {
			return err
		}
	}

	// Второй рубеж против овербукинга: даже если кто-то обойдёт условный
	// декремент, база не даст сохранить отрицательный остаток.
	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")
		if err := exec(ctx, db, log, []step{
			{"chk products", `
ALTER TABLE products
	DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative,
	ADD CONSTRAINT chk_products_stock_non_negative CHECK (stock >= 0),
	DROP CONSTRAINT IF EXISTS chk_products_price_non_negative,
	ADD CONSTRAINT chk_products_price_non_negative CHECK (price_cents >= 0);
`},
			{"chk product_variants", `
ALTER TABLE product_variants
	DROP CONSTRAINT IF EXISTS chk_variants_stock_non_negative,
	ADD CONSTRAINT chk_variants_stock_non_negative CHECK (stock >= 0),
	DROP CONSTRAINT IF EXISTS chk_variants_size_type,
	ADD CONSTRAINT chk_variants_size_type CHECK (size_type IN ('STANDARD','WAIST'));
`},
			{"chk order_items", `
ALTER TABLE order_items
	DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero,
	ADD CONSTRAINT chk_order_items_quantity_gt_zero CHECK (quantity > 0),
	DROP CONSTRAINT IF EXISTS chk_order_items_price_non_negative,
	ADD CONSTRAINT chk_order_items_price_non_negative CHECK (price_cents >= 0);
`},
			{"chk orders", `
ALTER TABLE orders
	DROP CONSTRAINT IF EXISTS chk_orders_total_non_negative,
	ADD CONSTRAINT chk_orders_total_non_negative CHECK (total_cents >= 0),
	DROP CONSTRAINT IF EXISTS chk_orders_payment_method,
	ADD CONSTRAINT chk_orders_payment_method CHECK (payment_method IN ('COD')),
	DROP CONSTRAINT IF EXISTS chk_orders_sent_at,
	ADD CONSTRAINT chk_orders_sent_at CHECK ((is_sent AND sent_at IS NOT NULL) OR (NOT is_sent AND sent_at IS NULL));
`},
			{"chk users.role", `
ALTER TABLE users
	DROP CONSTRAINT IF EXISTS chk_users_role_allowed,
	ADD CONSTRAINT chk_users_role_allowed CHECK (role IN ('ADMIN','SUPERADMIN'));
`},
		}); err != nil {
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов и уникальностей")
		if err := exec(ctx, db, log, []step{
			{"ux users email", `CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email_lower ON users (lower(email));`},
			{"ux categories name", `CREATE UNIQUE INDEX IF NOT EXISTS ux_categories_name_lower ON categories (lower(name));`},
			{"ux variants size", `CREATE UNIQUE INDEX IF NOT EXISTS ux_variants_product_size ON product_variants (product_id, size_type, size_value);`},
			{"ix orders dashboard", `CREATE INDEX IF NOT EXISTS ix_orders_sent_created ON orders (is_sent, sent_at, created_at DESC);`},
		}); err != nil {
			return err
		}
	}

	if opt.CreateSearchIndexes {
		log.Info("Создание GIN(trgm) индекса для поиска")
		if err := exec(ctx, db, log, []step{
			{"gin products name", `CREATE INDEX IF NOT EXISTS gin_products_name_trgm ON products USING gin (name gin_trgm_ops);`},
		}); err != nil {
			return err
		}
	}

	log.Info("Миграция базы магазина успешно завершена")
	return nil
}
