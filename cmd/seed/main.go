// Command main runs the database seeder for Planora.
package main

import (
	"flag"
	"log"

	"planora/internal/config"
	"planora/internal/database"
	"planora/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numEvents := flag.Int("events", 8, "Number of events to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Planora Database Seeder")
	log.Printf("Target: %d users, %d events, clean=%v\n", *numUsers, *numEvents, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumEvents:   *numEvents,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is now populated with demo data.")
	log.Println("Every seeded account uses the password: Planora-Demo-1!")
}
