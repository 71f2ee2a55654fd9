package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bus_dispatch/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment variables
// and migrates the dispatch schema.
func InitDB() {
	// Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on env vars")
	}

	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "password")
	dbname := getEnv("DB_NAME", "dispatch")
	sslmode := getEnv("DB_SSLMODE", "disable")
	timezone := getEnv("DB_TIMEZONE", "UTC")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	db.Exec("CREATE EXTENSION IF NOT EXISTS postgis;")

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Driver{},
		&models.Bus{},
		&models.Passenger{},
		&models.Route{},
		&models.Stop{},
		&models.Schedule{},
		&models.Trip{},
		&models.TripLocation{},
		&models.Attendance{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	DB = db
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
