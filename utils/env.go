package utils

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env from the working directory if there is one.
func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("ℹ️  No .env file found, continuing...")
	}
}

// GetDatabaseURL returns DATABASE_URL, or an empty string when unset.
func GetDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}
