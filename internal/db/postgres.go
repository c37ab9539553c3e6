package db

import (
	"fmt"
	"log/slog"
	"time"

	"rideshare-backend/internal/config"
	"rideshare-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectPostgres подключается к базе с повторными попытками и настраивает пул соединений
func ConnectPostgres(cfg config.Config) (*gorm.DB, error) {
	var err error
	for i := 0; i < cfg.DBConnectAttempts; i++ {
		var db *gorm.DB
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, fmt.Errorf("не удалось получить доступ к sql.DB: %w", err)
			}
			sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
			sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
			sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
			return db, nil
		}
		slog.Warn("попытка подключения к БД не удалась",
			"attempt", i+1, "max_attempts", cfg.DBConnectAttempts, "error", err)
		time.Sleep(cfg.DBConnectRetryDelay)
	}
	return nil, fmt.Errorf("не удалось подключиться к базе данных после %d попыток: %w", cfg.DBConnectAttempts, err)
}

// Migrate создает и обновляет таблицы моделей
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Trip{},
		&models.Request{},
		&models.Booking{},
	)
}
