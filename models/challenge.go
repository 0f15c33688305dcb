// models/challenge.go - CTF Challenge Data Models
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Challenge difficulty constants
type ChallengeDifficulty string

const (
	DifficultyEasy   ChallengeDifficulty = "easy"
	DifficultyMedium ChallengeDifficulty = "medium"
	DifficultyHard   ChallengeDifficulty = "hard"
)

// FallbackKey is used when an encrypted message carries no layered key.
const FallbackKey = "UNKNOWNKEY123456"

// Challenge represents a cryptography challenge. The flag is never
// serialized to JSON; client payloads go through ClientView.
type Challenge struct {
	ID         string              `json:"id" gorm:"primaryKey;size:50"`
	Type       string              `json:"type" gorm:"not null;size:20"`
	Difficulty ChallengeDifficulty `json:"difficulty" gorm:"not null;size:10;index"`

	Description string `json:"description" gorm:"not null;type:text"`
	Points      int    `json:"points" gorm:"not null;default:0"`

	// HintsJSON holds a JSON array of ordered hint strings
	HintsJSON string `json:"-" gorm:"column:hints;not null;type:text"`

	// EncryptedMessage is the layered payload: LAYER_TYPE:KEY:CIPHERTEXT
	EncryptedMessage string `json:"encrypted_message" gorm:"not null;type:text"`

	Flag     string `json:"-" gorm:"not null;size:100"`
	IsActive bool   `json:"is_active" gorm:"default:true;index"`

	// FilesJSON holds a JSON array of attachment paths
	FilesJSON string `json:"-" gorm:"column:files;type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (c *Challenge) Hints() []string {
	var hints []string
	if c.HintsJSON == "" {
		return hints
	}
	if err := json.Unmarshal([]byte(c.HintsJSON), &hints); err != nil {
		return nil
	}
	return hints
}

func (c *Challenge) SetHints(hints []string) error {
	data, err := json.Marshal(hints)
	if err != nil {
		return err
	}
	c.HintsJSON = string(data)
	return nil
}

func (c *Challenge) Files() []string {
	var files []string
	if c.FilesJSON == "" {
		return files
	}
	if err := json.Unmarshal([]byte(c.FilesJSON), &files); err != nil {
		return nil
	}
	return files
}

func (c *Challenge) SetFiles(files []string) error {
	data, err := json.Marshal(files)
	if err != nil {
		return err
	}
	c.FilesJSON = string(data)
	return nil
}

// Key extracts the hidden key from the layered encrypted message.
// Format is LAYER_TYPE:KEY:CIPHERTEXT; without the delimiter the first
// 16 characters of the raw payload serve as a degraded fallback key.
func (c *Challenge) Key() string {
	msg := c.EncryptedMessage
	if strings.Contains(msg, ":") {
		parts := strings.SplitN(msg, ":", 3)
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	if msg == "" {
		return FallbackKey
	}
	if len(msg) > 16 {
		return msg[:16]
	}
	return msg
}

// ClientView is the only serialization handed to web clients. The flag is
// excluded unconditionally.
func (c *Challenge) ClientView() map[string]interface{} {
	files := c.Files()
	if files == nil {
		files = []string{}
	}
	return map[string]interface{}{
		"id":                c.ID,
		"type":              c.Type,
		"difficulty":        string(c.Difficulty),
		"description":       c.Description,
		"points":            c.Points,
		"hint_count":        len(c.Hints()),
		"encrypted_message": c.EncryptedMessage,
		"is_active":         c.IsActive,
		"files":             files,
	}
}
