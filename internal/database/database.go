package database

import (
	"context"
	"fmt"
	"time"

	"payments-api/internal/config"
	"payments-api/internal/models"
	"payments-api/pkg/logging"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Init opens the database connection and runs migrations.
func Init(cfg *config.Config) (*gorm.DB, error) {
	db, err := open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logging.Infof("Database connected successfully")
	return db, nil
}

// open connects to PostgreSQL, or falls back to SQLite for development.
func open(dsn string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	}

	if dsn == "" {
		logging.Infof("Database URL not set, using SQLite for development")
		return gorm.Open(sqlite.Open("payments-api.db"), gormConfig)
	}
	return gorm.Open(postgres.Open(dsn), gormConfig)
}

// migrate creates the tables and the success-reference uniqueness guarantee.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Provider{},
		&models.Payment{},
		&models.ReferralReward{},
	); err != nil {
		return err
	}

	// Partial unique index: at most one SUCCESS row per reference. This is
	// the authoritative idempotency guarantee; the application-level
	// HasSuccessfulPayment check is only a fast path.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_success_reference_unique
		 ON payment (reference) WHERE status = 'SUCCESS'`,
	).Error
}

// InitRedis connects the Redis client used by the payment queue.
func InitRedis(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Infof("Redis connected successfully")
	return client, nil
}
