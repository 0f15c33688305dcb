// services/challenge_manager.go - Challenge lifecycle, flag verification, hints
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cryptobay/models"
)

// Sentinel errors surfaced to the web layer.
var (
	ErrNotFound           = errors.New("challenge not found")
	ErrDuplicateChallenge = errors.New("challenge id already exists")
)

// pointsByDifficulty assigns the scoring tier at creation time.
var pointsByDifficulty = map[models.ChallengeDifficulty]int{
	models.DifficultyEasy:   100,
	models.DifficultyMedium: 250,
	models.DifficultyHard:   500,
}

// hintsByCipher is the ordered hint list assigned per cipher family.
var hintsByCipher = map[string][]string{
	CipherCaesar: {
		"Every letter moved the same number of steps.",
		"There are only 25 possible shifts. Try them all.",
		"The key field in the payload is the shift amount.",
	},
	CipherXOR: {
		"The ciphertext is hex-encoded bytes.",
		"XOR with the same key twice gives you back the plaintext.",
		"The key repeats every 8 characters.",
	},
	CipherVigenere: {
		"A Caesar cipher whose shift changes per letter.",
		"Only letters are shifted; punctuation passes through.",
		"The keyword is 8 uppercase letters.",
	},
	CipherAES: {
		"AES-256? No, the key is 16 characters - AES-128.",
		"The hex blob starts with the GCM nonce.",
		"Win the minigames and the key is yours.",
	},
	CipherRSA: {
		"The modulus is small enough to factor by hand.",
		"Each number in the ciphertext is one encrypted byte.",
		"The key field carries d and n - that is the whole private key.",
	},
}

// ChallengeManager owns challenge definitions, flag verification, and the
// hint economy. Construct explicitly with NewChallengeManager; tests make
// isolated instances per case.
type ChallengeManager struct {
	db *gorm.DB
}

func NewChallengeManager(db *gorm.DB) *ChallengeManager {
	return &ChallengeManager{db: db}
}

// CreateChallenge generates an encrypted payload for the cipher family,
// computes the flag, and persists the challenge. Creation with an existing
// id returns ErrDuplicateChallenge; callers at startup log and continue.
func (cm *ChallengeManager) CreateChallenge(id, cipherType string, difficulty models.ChallengeDifficulty) (*models.Challenge, error) {
	var existing models.Challenge
	err := cm.db.Where("id = ?", id).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateChallenge, id)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	payload, err := GeneratePayload(cipherType)
	if err != nil {
		return nil, err
	}

	points, ok := pointsByDifficulty[difficulty]
	if !ok {
		return nil, fmt.Errorf("unknown difficulty: %s", difficulty)
	}

	challenge := models.Challenge{
		ID:               id,
		Type:             cipherType,
		Difficulty:       difficulty,
		Description:      challengeDescription(cipherType, difficulty),
		Points:           points,
		EncryptedMessage: payload.EncryptedMessage,
		Flag:             payload.Flag,
		IsActive:         true,
		CreatedAt:        time.Now().UTC(),
	}
	if err := challenge.SetHints(hintsByCipher[cipherType]); err != nil {
		return nil, err
	}
	if err := challenge.SetFiles(nil); err != nil {
		return nil, err
	}

	if err := cm.db.Create(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// GetAllChallenges returns client-safe views of all active challenges,
// keyed by challenge id.
func (cm *ChallengeManager) GetAllChallenges() (map[string]map[string]interface{}, error) {
	var challenges []models.Challenge
	if err := cm.db.Where("is_active = ?", true).Find(&challenges).Error; err != nil {
		return nil, err
	}

	views := make(map[string]map[string]interface{}, len(challenges))
	for i := range challenges {
		views[challenges[i].ID] = challenges[i].ClientView()
	}
	return views, nil
}

// GetChallenge loads one active challenge. Unknown ids return ErrNotFound.
func (cm *ChallengeManager) GetChallenge(id string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := cm.db.Where("id = ? AND is_active = ?", id, true).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// SubmitFlag verifies a submitted flag with a case-sensitive exact match.
// A wrong flag is a normal negative result, never an error. Updating the
// submitter's buyer/seller solved set is the caller's concern.
func (cm *ChallengeManager) SubmitFlag(challengeID string, userID uint, flag string) (bool, string, error) {
	challenge, err := cm.GetChallenge(challengeID)
	if err != nil {
		return false, "", err
	}

	if flag == challenge.Flag {
		return true, fmt.Sprintf("Correct! You earned %d points.", challenge.Points), nil
	}
	return false, "Incorrect flag. Try again.", nil
}

// UseHint returns the next unused hint for the user on a challenge, tracking
// consumption in the hint_usage ledger. Exhausted hints return ("", message).
func (cm *ChallengeManager) UseHint(challengeID string, userID uint) (string, string, error) {
	challenge, err := cm.GetChallenge(challengeID)
	if err != nil {
		return "", "", err
	}
	hints := challenge.Hints()

	var usage models.HintUsage
	err = cm.db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		FirstOrCreate(&usage, models.HintUsage{UserID: userID, ChallengeID: challengeID}).Error
	if err != nil {
		return "", "", err
	}

	if usage.UsedCount >= len(hints) {
		return "", "No hints remaining.", nil
	}

	hint := hints[usage.UsedCount]
	usage.UsedCount++
	if err := cm.db.Save(&usage).Error; err != nil {
		return "", "", err
	}

	return hint, fmt.Sprintf("Hint %d of %d", usage.UsedCount, len(hints)), nil
}

func challengeDescription(cipherType string, difficulty models.ChallengeDifficulty) string {
	switch cipherType {
	case CipherCaesar:
		return "A classical shift cipher guards this flag. Rotate your way in."
	case CipherXOR:
		return "The flag was XORed with a repeating key and hex-encoded."
	case CipherVigenere:
		return "A polyalphabetic cipher with a short keyword hides the flag."
	case CipherAES:
		return "AES-128-GCM protects this flag. Recover the key through the minigames, then decrypt."
	case CipherRSA:
		return "Textbook RSA with a toy modulus. Factor it or earn the private key."
	default:
		return fmt.Sprintf("A %s cryptography challenge (%s).", cipherType, difficulty)
	}
}
