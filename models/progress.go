// models/progress.go - Minigame progress ledger and hint usage
package models

import (
	"time"
)

// MinigameProgress is one completed minigame for a user on a challenge.
// Rows are append-only; the composite unique index makes completion
// idempotent at the storage layer (insert-if-absent, no read-then-write).
type MinigameProgress struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_progress_user_challenge_game"`
	User         *User      `json:"-" gorm:"foreignKey:UserID"`
	ChallengeID  string     `json:"challenge_id" gorm:"not null;size:50;uniqueIndex:idx_progress_user_challenge_game"`
	Challenge    *Challenge `json:"-" gorm:"foreignKey:ChallengeID"`
	MinigameType string     `json:"minigame_type" gorm:"not null;size:20;uniqueIndex:idx_progress_user_challenge_game"`
	PartIndex    int        `json:"part_index" gorm:"not null"`
	RevealedPart string     `json:"revealed_part" gorm:"not null;size:50"`
	CompletedAt  time.Time  `json:"completed_at"`
}

func (MinigameProgress) TableName() string {
	return "minigame_progress"
}

// HintUsage tracks how many of a challenge's ordered hints a user has
// consumed. One row per (user, challenge).
type HintUsage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_hint_user_challenge"`
	ChallengeID string    `json:"challenge_id" gorm:"not null;size:50;uniqueIndex:idx_hint_user_challenge"`
	UsedCount   int       `json:"used_count" gorm:"not null;default:0"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (HintUsage) TableName() string {
	return "hint_usage"
}
