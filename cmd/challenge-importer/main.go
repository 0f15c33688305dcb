package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptobay/models"
)

// JSONChallenge mirrors the exported challenge definition format.
type JSONChallenge struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Description      string   `json:"description"`
	Points           int      `json:"points"`
	Hints            []string `json:"hints"`
	EncryptedMessage string   `json:"encrypted_message"`
	Flag             string   `json:"flag"`
	Files            []string `json:"files"`
}

func main() {
	dbPath := "./data/cryptobay.db"
	jsonPath := "./data/challenges.json"
	if len(os.Args) > 1 {
		jsonPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		dbPath = os.Args[2]
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&models.Challenge{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		log.Fatal("Failed to read JSON file:", err)
	}

	var defs []JSONChallenge
	if err := json.Unmarshal(data, &defs); err != nil {
		log.Fatal("Failed to parse JSON:", err)
	}

	imported, skipped := 0, 0
	for _, def := range defs {
		challenge := models.Challenge{
			ID:               def.ID,
			Type:             def.Type,
			Difficulty:       models.ChallengeDifficulty(def.Difficulty),
			Description:      def.Description,
			Points:           def.Points,
			EncryptedMessage: def.EncryptedMessage,
			Flag:             def.Flag,
			IsActive:         true,
		}
		if err := challenge.SetHints(def.Hints); err != nil {
			log.Fatal("Failed to encode hints:", err)
		}
		if err := challenge.SetFiles(def.Files); err != nil {
			log.Fatal("Failed to encode files:", err)
		}

		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&challenge)
		if result.Error != nil {
			log.Fatalf("Failed to import challenge %s: %v", def.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			skipped++
		} else {
			imported++
		}
	}

	fmt.Printf("Imported %d challenges (%d already present) from %s into %s\n",
		imported, skipped, jsonPath, dbPath)
}
