package main

import (
	"fmt"

	"github.com/mikios34/customer-admin/config"
	"github.com/mikios34/customer-admin/entity"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func initDatabase(cfg config.DatabaseConfig, mode string, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if mode == "debug" {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// uuid_generate_v4 backs the primary key defaults
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn("failed to ensure uuid-ossp extension", zap.Error(err))
	}

	// the email index used to cover soft deleted rows too
	if db.Migrator().HasIndex(&entity.Customer{}, "idx_customers_email") {
		if err := db.Migrator().DropIndex(&entity.Customer{}, "idx_customers_email"); err != nil {
			return nil, fmt.Errorf("failed to drop legacy email index: %w", err)
		}
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Admin{},
		&entity.Customer{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}
