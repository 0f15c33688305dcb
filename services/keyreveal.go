// services/keyreveal.go - Key splitting and minigame-based revelation
package services

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cryptobay/models"
)

// Minigame type constants. The cycle order is load-bearing: it decides
// which game reveals which key fragment, so it must stay stable for any
// persisted progress to keep meaning what it meant when written.
const (
	GameWheel    = "wheel"
	GameQuiz     = "quiz"
	GameMemory   = "memory"
	GameSlider   = "slider"
	GameScramble = "scramble"
)

// MinigameCycle assigns game types to key parts round-robin.
var MinigameCycle = []string{GameWheel, GameQuiz, GameMemory, GameSlider, GameScramble}

// KeyPart is one contiguous slice of a challenge key, bound to a minigame.
type KeyPart struct {
	Index    int    `json:"index"`
	Value    string `json:"value"`
	GameType string `json:"game_type"`
	Revealed bool   `json:"revealed"`
}

// GameProgress is the per-minigame completion view handed to the web layer.
type GameProgress struct {
	Completed    bool      `json:"completed"`
	RevealedPart string    `json:"revealed_part"`
	CompletedAt  time.Time `json:"completed_at"`
}

// KeyRevealManager orchestrates key splitting, the progress ledger, and
// masked key recomposition. Construct one per process with NewKeyRevealManager;
// tests construct isolated instances against their own databases.
type KeyRevealManager struct {
	db *gorm.DB
}

func NewKeyRevealManager(db *gorm.DB) *KeyRevealManager {
	return &KeyRevealManager{db: db}
}

// SplitKey splits a key into numParts contiguous fragments, each assigned a
// minigame type from MinigameCycle. Sizes are len/numParts, with the first
// len%numParts parts one character longer. Zero-size parts are dropped, so
// short keys yield fewer parts and the type cycle skips with them.
func (m *KeyRevealManager) SplitKey(key string, numParts int) []KeyPart {
	if key == "" || numParts <= 0 {
		return nil
	}

	keyLength := len(key)
	baseSize := keyLength / numParts
	remainder := keyLength % numParts

	var parts []KeyPart
	start := 0
	for i := 0; i < numParts; i++ {
		size := baseSize
		if i < remainder {
			size++
		}
		if size == 0 {
			continue
		}
		parts = append(parts, KeyPart{
			Index:    i,
			Value:    key[start : start+size],
			GameType: MinigameCycle[i%len(MinigameCycle)],
		})
		start += size
	}

	return parts
}

// GetUserProgress returns the user's completed minigames for a challenge,
// keyed by game type. Absent entries mean not completed.
func (m *KeyRevealManager) GetUserProgress(userID uint, challengeID string) (map[string]GameProgress, error) {
	var records []models.MinigameProgress
	err := m.db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	progress := make(map[string]GameProgress, len(records))
	for _, r := range records {
		progress[r.MinigameType] = GameProgress{
			Completed:    true,
			RevealedPart: r.RevealedPart,
			CompletedAt:  r.CompletedAt,
		}
	}
	return progress, nil
}

// MarkGameCompleted records a completed minigame. It is idempotent: the
// insert ignores conflicts on the (user, challenge, game_type) unique index,
// so concurrent duplicate completions collapse to a single row.
func (m *KeyRevealManager) MarkGameCompleted(userID uint, challengeID, gameType, revealedPart string, partIndex int) error {
	record := models.MinigameProgress{
		UserID:       userID,
		ChallengeID:  challengeID,
		MinigameType: gameType,
		PartIndex:    partIndex,
		RevealedPart: revealedPart,
		CompletedAt:  time.Now().UTC(),
	}

	return m.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "challenge_id"}, {Name: "minigame_type"},
		},
		DoNothing: true,
	}).Create(&record).Error
}

// GetRevealedKey composes the visible key for a user: the literal fragment
// for each completed game, a run of '*' of equal length otherwise. Output
// length always equals the full key's length.
func (m *KeyRevealManager) GetRevealedKey(userID uint, challengeID string, keyParts []KeyPart) (string, error) {
	progress, err := m.GetUserProgress(userID, challengeID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, part := range keyParts {
		if p, ok := progress[part.GameType]; ok && p.Completed {
			b.WriteString(part.Value)
		} else {
			b.WriteString(strings.Repeat("*", len(part.Value)))
		}
	}
	return b.String(), nil
}

// FindPart returns the key part bound to gameType, or nil when the key
// split into too few parts for that game to exist.
func FindPart(parts []KeyPart, gameType string) *KeyPart {
	for i := range parts {
		if parts[i].GameType == gameType {
			return &parts[i]
		}
	}
	return nil
}
