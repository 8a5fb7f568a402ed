package infra

import (
	"fmt"

	"tradenet/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection backed by pgx and brings the schema
// up to date.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates every table, then applies the constraints
// AutoMigrate cannot express. Safe to run repeatedly.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.NetworkNode{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL. Each statement is guarded so
// re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"debt is never negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_network_nodes_debt_non_negative') THEN
    ALTER TABLE network_nodes ADD CONSTRAINT chk_network_nodes_debt_non_negative CHECK (debt >= 0);
  END IF;
END $$`},
		{"level stays within 0..2", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_network_nodes_level_range') THEN
    ALTER TABLE network_nodes ADD CONSTRAINT chk_network_nodes_level_range CHECK (level BETWEEN 0 AND 2);
  END IF;
END $$`},
		{"factory has no supplier", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_network_nodes_factory_supplier') THEN
    ALTER TABLE network_nodes ADD CONSTRAINT chk_network_nodes_factory_supplier
      CHECK ((node_type = 'Factory') = (supplier_id IS NULL));
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
