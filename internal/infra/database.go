package infra

import (
	"fmt"

	"github.com/Alishanbouraa/chickensap/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// for all tables. TranslateError is enabled so unique-constraint violations
// surface as gorm.ErrDuplicatedKey — the settlement and reconciliation
// services rely on that for invoice-number and (truck, date) collision
// handling.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Shared with the integration test setup.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.Truck{},
		&model.TruckLoad{},
		&model.Invoice{},
		&model.Payment{},
		&model.DailyReconciliation{},
		&model.AuditEntry{},
	)
}
