package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/playpark/internal/config"
	"github.com/BruksfildServices01/playpark/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// Migrate creates the schema and the race-guard indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Child{},
		&models.Location{},
		&models.Zone{},
		&models.Service{},
		&models.Session{},
		&models.Credit{},
		&models.Visit{},
		&models.AppliedPurchase{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// At most one open visit per child.
	if err := db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS ux_visits_child_active
        ON visits (child_id)
        WHERE check_out_time IS NULL
    `).Error; err != nil {
		return fmt.Errorf("create active visit index: %w", err)
	}

	if err := db.Exec(`
        CREATE INDEX IF NOT EXISTS ix_credits_expiry_open
        ON credits (expiry_date, id)
        WHERE minutes_remaining > 0
    `).Error; err != nil {
		return fmt.Errorf("create credit expiry index: %w", err)
	}

	return db.Exec(`
        UPDATE locations
        SET timezone = 'America/Bogota'
        WHERE timezone IS NULL OR timezone = ''
    `).Error
}
