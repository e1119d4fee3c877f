package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the connection pool. The returned handle is shared by every
// repository; callers own it for the life of the process.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return db, nil
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Plant{},
		&models.UserPlant{},
		&models.Diagnosis{},
		&models.ActivityLog{},
		&models.UserBadge{},
		&models.Compatibility{},
		&models.ChatMessage{},
		&models.SystemLog{},
	}
}

// legacyPlantNameIndex covered soft-deleted rows too and blocked re-adding
// a deleted species.
const legacyPlantNameIndex = "idx_plants_scientific_name"

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	m := db.Migrator()
	if m.HasTable(&models.Plant{}) && m.HasIndex(&models.Plant{}, legacyPlantNameIndex) {
		if err := m.DropIndex(&models.Plant{}, legacyPlantNameIndex); err != nil {
			return fmt.Errorf("failed to drop %s: %w", legacyPlantNameIndex, err)
		}
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
