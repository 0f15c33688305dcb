package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptobay/models"
)

func TestCreateChallenge(t *testing.T) {
	cm := NewChallengeManager(testDB(t))

	challenge, err := cm.CreateChallenge("caesar_easy", CipherCaesar, models.DifficultyEasy)
	require.NoError(t, err)

	assert.Equal(t, "caesar_easy", challenge.ID)
	assert.Equal(t, 100, challenge.Points)
	assert.True(t, challenge.IsActive)
	assert.Regexp(t, flagPattern, challenge.Flag)
	assert.Len(t, challenge.Hints(), 3)
	assert.NotEmpty(t, challenge.Description)
}

func TestCreateChallengeDuplicate(t *testing.T) {
	cm := NewChallengeManager(testDB(t))

	_, err := cm.CreateChallenge("xor_easy", CipherXOR, models.DifficultyEasy)
	require.NoError(t, err)

	_, err = cm.CreateChallenge("xor_easy", CipherXOR, models.DifficultyEasy)
	assert.ErrorIs(t, err, ErrDuplicateChallenge)
}

func TestCreateChallengePointsByDifficulty(t *testing.T) {
	cm := NewChallengeManager(testDB(t))

	medium, err := cm.CreateChallenge("vigenere_medium", CipherVigenere, models.DifficultyMedium)
	require.NoError(t, err)
	assert.Equal(t, 250, medium.Points)

	hard, err := cm.CreateChallenge("rsa_hard", CipherRSA, models.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, 500, hard.Points)

	_, err = cm.CreateChallenge("weird", CipherCaesar, models.ChallengeDifficulty("impossible"))
	assert.Error(t, err)
}

func TestGetChallengeNotFound(t *testing.T) {
	cm := NewChallengeManager(testDB(t))

	_, err := cm.GetChallenge("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetChallengeIgnoresInactive(t *testing.T) {
	db := testDB(t)
	cm := NewChallengeManager(db)

	challenge, err := cm.CreateChallenge("aes_easy", CipherAES, models.DifficultyEasy)
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.Challenge{}).
		Where("id = ?", challenge.ID).
		Update("is_active", false).Error)

	_, err = cm.GetChallenge("aes_easy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllChallengesExcludesFlag(t *testing.T) {
	cm := NewChallengeManager(testDB(t))

	_, err := cm.CreateChallenge("caesar_easy", CipherCaesar, models.DifficultyEasy)
	require.NoError(t, err)
	_, err = cm.CreateChallenge("aes_hard", CipherAES, models.DifficultyHard)
	require.NoError(t, err)

	views, err := cm.GetAllChallenges()
	require.NoError(t, err)
	require.Len(t, views, 2)

	for id, view := range views {
		assert.NotContains(t, view, "flag", "flag must never reach the client view (%s)", id)
		assert.Contains(t, view, "encrypted_message")
		assert.Contains(t, view, "hint_count")
	}
}

func TestSubmitFlag(t *testing.T) {
	cm := NewChallengeManager(testDB(t))

	challenge, err := cm.CreateChallenge("xor_easy", CipherXOR, models.DifficultyEasy)
	require.NoError(t, err)

	ok, message, err := cm.SubmitFlag("xor_easy", 1, challenge.Flag)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, message, "100 points")

	// Wrong flag is a negative result, not an error
	ok, message, err = cm.SubmitFlag("xor_easy", 1, "FLAG{nope}")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Incorrect flag. Try again.", message)

	// Case-sensitive comparison
	ok, _, err = cm.SubmitFlag("xor_easy", 1, "flag{"+challenge.Flag[5:])
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = cm.SubmitFlag("ghost", 1, "FLAG{x}")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUseHintSequence(t *testing.T) {
	db := testDB(t)
	cm := NewChallengeManager(db)

	challenge, err := cm.CreateChallenge("caesar_easy", CipherCaesar, models.DifficultyEasy)
	require.NoError(t, err)
	hints := challenge.Hints()
	require.Len(t, hints, 3)

	for i := 0; i < 3; i++ {
		hint, message, err := cm.UseHint("caesar_easy", 1)
		require.NoError(t, err)
		assert.Equal(t, hints[i], hint, "hints come in order")
		assert.Contains(t, message, "of 3")
	}

	// Exhausted
	hint, message, err := cm.UseHint("caesar_easy", 1)
	require.NoError(t, err)
	assert.Empty(t, hint)
	assert.Equal(t, "No hints remaining.", message)

	// Per-user ledger: a different user starts fresh
	hint, _, err = cm.UseHint("caesar_easy", 2)
	require.NoError(t, err)
	assert.Equal(t, hints[0], hint)

	var usage models.HintUsage
	require.NoError(t, db.Where("user_id = ? AND challenge_id = ?", 1, "caesar_easy").First(&usage).Error)
	assert.Equal(t, 3, usage.UsedCount)
}
