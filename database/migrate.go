// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"cryptobay/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Buyer{},
		&models.Seller{},
		&models.Challenge{},
		&models.MinigameProgress{},
		&models.HintUsage{},
	); err != nil {
		log.Fatalf("❌ Failed to run core migrations: %v", err)
	}

	log.Println("✅ Core migrations completed")

	createCoreIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createCoreIndexes creates indexes for core tables. The unique composite
// index on minigame_progress is load-bearing: completion marking relies on
// it for atomic insert-if-absent.
func createCoreIndexes() {
	db := GetDB()
	log.Println("Creating core indexes...")

	// User indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)")

	// Challenge indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenges_active ON challenges(is_active)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenges_difficulty ON challenges(difficulty)")

	// Progress ledger indexes
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_progress_user_challenge_game ON minigame_progress(user_id, challenge_id, minigame_type)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_progress_user_challenge ON minigame_progress(user_id, challenge_id)")

	// Hint usage indexes
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_hint_user_challenge ON hint_usage(user_id, challenge_id)")

	log.Println("✅ Core indexes created successfully")
}
