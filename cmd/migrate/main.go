// Command migrate applies the database schema explicitly. Outside of
// production the server migrates on startup; in production this command is
// the intended way to roll the schema forward.
package main

import (
	"log"

	"planora/internal/config"
	"planora/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Schema migration applied")
}
