package main

import (
	"context"
	"log"

	"simple-chats/config"
	"simple-chats/internal/repository"
	"simple-chats/pkg/database"
)

// Applies the database schema and exits. The server does the same at
// startup; this entrypoint exists for deploy pipelines that migrate
// before rolling the app.
func main() {
	cfg := config.LoadConfig()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := repository.InitSchema(context.Background(), db, cfg.DBDriver); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	log.Println("Schema applied")
}
