// Command main seeds the database with generated development data.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "number of users to create")
	numPosts := flag.Int("posts", 30, "number of posts to create")
	numTelegram := flag.Int("telegram", 5, "number of telegram users to create")
	clean := flag.Bool("clean", false, "remove existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Env == "production" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	opts := seed.Options{
		NumUsers:         *numUsers,
		NumPosts:         *numPosts,
		NumTelegramUsers: *numTelegram,
		ShouldClean:      *clean,
	}

	if err := seed.NewSeeder(db).Run(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d telegram users", *numUsers, *numPosts, *numTelegram)
}
