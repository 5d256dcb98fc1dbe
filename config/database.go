package config

import (
	"fmt"

	"github.com/avtoyurist/docbot/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the shared database handle
var DB *gorm.DB

// InitDB initializes the database connection and migrates the schema
func InitDB() error {
	if AppConfig == nil {
		if _, err := LoadConfig(); err != nil {
			return err
		}
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		AppConfig.DBHost, AppConfig.DBPort, AppConfig.DBUser, AppConfig.DBPassword, AppConfig.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		&models.Order{},
		&models.UserState{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	return nil
}
