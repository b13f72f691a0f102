package main

import (
	"log"

	"voicenotes-be/internal/config"
	"voicenotes-be/internal/model"
	"voicenotes-be/pkg/database"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to DB: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Note{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration complete")
}
