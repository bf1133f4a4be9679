// Rehashes legacy password digests to bcrypt.
// cmd/migrate-passwords/main.go
package main

import (
	"flag"
	"log"
	"strings"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
	"journal-editorial-api/utils"

	"github.com/joho/godotenv"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report which accounts would be rehashed without writing")
	flag.Parse()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	var users []models.User
	if err := config.DB.Where("delete_at IS NULL").Find(&users).Error; err != nil {
		log.Fatal("Failed to fetch users:", err)
	}

	var migrated, skipped, failed int
	for _, user := range users {
		// bcrypt digests start with $2; anything else is a legacy digest
		// imported from an older installation.
		if strings.HasPrefix(user.Password, "$2") {
			skipped++
			continue
		}

		if *dryRun {
			log.Printf("Would rehash password for %s", user.Email)
			migrated++
			continue
		}

		hashed, err := utils.HashPassword(user.Password)
		if err != nil {
			log.Printf("Failed to hash password for %s: %v", user.Email, err)
			failed++
			continue
		}

		if err := config.DB.Model(&user).Update("password", hashed).Error; err != nil {
			log.Printf("Failed to update password for %s: %v", user.Email, err)
			failed++
			continue
		}
		migrated++
	}

	log.Printf("Password migration finished: %d migrated, %d already bcrypt, %d failed", migrated, skipped, failed)
}
