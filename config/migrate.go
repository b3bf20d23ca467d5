package config

import (
	"log"
	"meetup_chat/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Migrate the schema
	if err := db.AutoMigrate(models.Tables()...); err != nil {
		log.Printf("Failed to migrate database schema: %v", err)
		return err
	}

	log.Println("Database Migrations completed succesfully...")
	return nil
}

func ResetAndMigrate(db *gorm.DB) error {
	// Drop all tables
	if err := db.Migrator().DropTable(models.Tables()...); err != nil {
		log.Printf("Failed to drop tables: %v", err)
		return err
	}

	log.Println("All tables dropped successfully.")

	if err := db.AutoMigrate(models.Tables()...); err != nil {
		log.Printf("Failed to auto migrate: %v", err)
		return err
	}

	log.Println("Database reset and migration completed successfully.")
	return nil
}
