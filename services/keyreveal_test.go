package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cryptobay/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Buyer{},
		&models.Seller{},
		&models.Challenge{},
		&models.MinigameProgress{},
		&models.HintUsage{},
	))
	return db
}

func seedUserAndChallenge(t *testing.T, db *gorm.DB, challengeID, encryptedMessage string) uint {
	t.Helper()

	user := models.User{Username: "alice", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	challenge := models.Challenge{
		ID:               challengeID,
		Type:             "aes",
		Difficulty:       models.DifficultyEasy,
		Description:      "test challenge",
		Points:           100,
		HintsJSON:        `["h1"]`,
		EncryptedMessage: encryptedMessage,
		Flag:             "FLAG{TEST}",
		IsActive:         true,
	}
	require.NoError(t, db.Create(&challenge).Error)

	return user.ID
}

func TestSplitKeyRoundTrip(t *testing.T) {
	m := NewKeyRevealManager(nil)

	keys := []string{"A", "AB", "SECRET12", "0123456789ABCDEF", "a-very-long-key-with-punctuation!#"}
	for _, key := range keys {
		for n := 1; n <= 8; n++ {
			parts := m.SplitKey(key, n)

			var b strings.Builder
			for i, part := range parts {
				assert.Equal(t, i, part.Index, "indexes are contiguous from zero")
				assert.NotEmpty(t, part.Value)
				b.WriteString(part.Value)
			}
			assert.Equal(t, key, b.String(), "split(%q, %d) must reassemble", key, n)
		}
	}
}

func TestSplitKeyEmpty(t *testing.T) {
	m := NewKeyRevealManager(nil)
	assert.Empty(t, m.SplitKey("", 5))
	assert.Empty(t, m.SplitKey("key", 0))
}

func TestSplitKeySizesAndCycle(t *testing.T) {
	m := NewKeyRevealManager(nil)

	parts := m.SplitKey("SECRET12", 5)
	require.Len(t, parts, 5)

	// 8 chars over 5 parts: first 3 get 2, last 2 get 1
	assert.Equal(t, "SE", parts[0].Value)
	assert.Equal(t, "CR", parts[1].Value)
	assert.Equal(t, "ET", parts[2].Value)
	assert.Equal(t, "1", parts[3].Value)
	assert.Equal(t, "2", parts[4].Value)

	expected := []string{GameWheel, GameQuiz, GameMemory, GameSlider, GameScramble}
	for i, part := range parts {
		assert.Equal(t, expected[i], part.GameType)
	}
}

func TestSplitKeyShortKeyDropsParts(t *testing.T) {
	m := NewKeyRevealManager(nil)

	parts := m.SplitKey("ABC", 5)
	require.Len(t, parts, 3)
	assert.Equal(t, GameWheel, parts[0].GameType)
	assert.Equal(t, GameQuiz, parts[1].GameType)
	assert.Equal(t, GameMemory, parts[2].GameType)
	assert.Nil(t, FindPart(parts, GameSlider))
	assert.Nil(t, FindPart(parts, GameScramble))
}

func TestGetRevealedKeyMasking(t *testing.T) {
	db := testDB(t)
	m := NewKeyRevealManager(db)
	userID := seedUserAndChallenge(t, db, "aes_easy", "AES:SECRET12:deadbeef")

	parts := m.SplitKey("SECRET12", 5)

	// No progress: all masked, same length
	revealed, err := m.GetRevealedKey(userID, "aes_easy", parts)
	require.NoError(t, err)
	assert.Equal(t, "********", revealed)

	// All games completed: full key
	for _, part := range parts {
		require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", part.GameType, part.Value, part.Index))
	}
	revealed, err = m.GetRevealedKey(userID, "aes_easy", parts)
	require.NoError(t, err)
	assert.Equal(t, "SECRET12", revealed)
}

func TestMarkGameCompletedIdempotent(t *testing.T) {
	db := testDB(t)
	m := NewKeyRevealManager(db)
	userID := seedUserAndChallenge(t, db, "aes_easy", "AES:SECRET12:deadbeef")

	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameWheel, "SE", 0))
	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameWheel, "SE", 0))

	var count int64
	require.NoError(t, db.Model(&models.MinigameProgress{}).
		Where("user_id = ? AND challenge_id = ? AND minigame_type = ?", userID, "aes_easy", GameWheel).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetUserProgress(t *testing.T) {
	db := testDB(t)
	m := NewKeyRevealManager(db)
	userID := seedUserAndChallenge(t, db, "aes_easy", "AES:SECRET12:deadbeef")

	progress, err := m.GetUserProgress(userID, "aes_easy")
	require.NoError(t, err)
	assert.Empty(t, progress)

	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameQuiz, "CR", 1))

	progress, err = m.GetUserProgress(userID, "aes_easy")
	require.NoError(t, err)
	require.Contains(t, progress, GameQuiz)
	assert.True(t, progress[GameQuiz].Completed)
	assert.Equal(t, "CR", progress[GameQuiz].RevealedPart)
	assert.False(t, progress[GameQuiz].CompletedAt.IsZero())
}

func TestProgressiveRevealScenario(t *testing.T) {
	db := testDB(t)
	m := NewKeyRevealManager(db)
	userID := seedUserAndChallenge(t, db, "aes_easy", "AES:SECRET12:deadbeef")

	var challenge models.Challenge
	require.NoError(t, db.First(&challenge, "id = ?", "aes_easy").Error)
	require.Equal(t, "SECRET12", challenge.Key())

	parts := m.SplitKey(challenge.Key(), 5)
	require.Len(t, parts, 5)

	// Complete wheel and quiz: first four characters visible
	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameWheel, parts[0].Value, 0))
	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameQuiz, parts[1].Value, 1))

	revealed, err := m.GetRevealedKey(userID, "aes_easy", parts)
	require.NoError(t, err)
	assert.Equal(t, "SECR****", revealed)

	// Complete the rest: full key
	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameMemory, parts[2].Value, 2))
	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameSlider, parts[3].Value, 3))
	require.NoError(t, m.MarkGameCompleted(userID, "aes_easy", GameScramble, parts[4].Value, 4))

	revealed, err = m.GetRevealedKey(userID, "aes_easy", parts)
	require.NoError(t, err)
	assert.Equal(t, "SECRET12", revealed)
}

func TestRevealedKeyLengthInvariant(t *testing.T) {
	db := testDB(t)
	m := NewKeyRevealManager(db)
	userID := seedUserAndChallenge(t, db, "aes_easy", "AES:SECRET12:deadbeef")

	for _, key := range []string{"K", "KEY", "SECRET12", "0123456789ABCDEF"} {
		parts := m.SplitKey(key, 5)
		revealed, err := m.GetRevealedKey(userID, "aes_easy", parts)
		require.NoError(t, err)
		assert.Len(t, revealed, len(key), fmt.Sprintf("masked output for %q", key))
	}
}
