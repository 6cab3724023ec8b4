package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/tracklite-dev/tracklite/db"
	"github.com/tracklite-dev/tracklite/internal/auth"
	"github.com/tracklite-dev/tracklite/internal/router"
	"github.com/tracklite-dev/tracklite/internal/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT secret: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")

	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := db.SeedTicketTypes(); err != nil {
		log.Fatalf("Failed to seed ticket types: %v", err)
	}

	uploads := os.Getenv("UPLOADS_DIR")

	if uploads == "" {
		uploads = "uploads"
	}

	if err := storage.Init(uploads); err != nil {
		log.Fatalf("Failed to initialize uploads directory: %v", err)
	}

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "3000"
		log.Println("PORT not set, defaulting to 3000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
