package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWheelSegments(t *testing.T) {
	segments := GenerateWheelSegments("se")

	// 2 key chars + max(8-2, 4) = 6 decoys
	assert.Len(t, segments, 8)

	correct := map[string]int{}
	for _, seg := range segments {
		if seg.IsCorrect {
			correct[seg.Char]++
		}
	}
	assert.Equal(t, 1, correct["S"], "key characters are uppercased")
	assert.Equal(t, 1, correct["E"])
	assert.Len(t, correct, 2)
}

func TestGenerateWheelSegmentsDecoyFloor(t *testing.T) {
	// Long part: decoy count bottoms out at 4
	segments := GenerateWheelSegments("ABCDEF")
	assert.Len(t, segments, 10)

	decoys := 0
	for _, seg := range segments {
		if !seg.IsCorrect {
			decoys++
		}
	}
	assert.Equal(t, 4, decoys)
}

func TestGetQuizQuestionsSampling(t *testing.T) {
	questions := GetQuizQuestions(3)
	require.Len(t, questions, 3)

	seen := map[string]bool{}
	for _, q := range questions {
		assert.False(t, seen[q.Question], "no question repeats within one quiz")
		seen[q.Question] = true
		assert.Len(t, q.Options, 4)
		assert.GreaterOrEqual(t, q.Answer, 0)
		assert.Less(t, q.Answer, len(q.Options))
	}

	// Asking for more than the bank holds caps at the bank size
	assert.Len(t, GetQuizQuestions(50), len(quizBank))
}

func TestVerifyQuizAnswersBoundary(t *testing.T) {
	questions := quizBank[:3]
	right := []int{questions[0].Answer, questions[1].Answer, questions[2].Answer}

	correct, total := VerifyQuizAnswers(questions, right)
	assert.Equal(t, 3, correct)
	assert.Equal(t, 3, total)
	assert.GreaterOrEqual(t, correct, QuizPassScore)

	// Exactly 2 of 3 passes
	twoRight := []int{right[0], right[1], (right[2] + 1) % 4}
	correct, _ = VerifyQuizAnswers(questions, twoRight)
	assert.Equal(t, 2, correct)
	assert.GreaterOrEqual(t, correct, QuizPassScore)

	// 1 of 3 fails
	oneRight := []int{right[0], (right[1] + 1) % 4, (right[2] + 1) % 4}
	correct, _ = VerifyQuizAnswers(questions, oneRight)
	assert.Equal(t, 1, correct)
	assert.Less(t, correct, QuizPassScore)

	// Short answer lists only score the answered positions
	correct, total = VerifyQuizAnswers(questions, right[:1])
	assert.Equal(t, 1, correct)
	assert.Equal(t, 3, total)
}

func TestGenerateMemoryCards(t *testing.T) {
	cards := GenerateMemoryCards("AB")

	// 2 key pairs + 3 decoy pairs
	require.Len(t, cards, 10)

	byValue := map[string][]MemoryCard{}
	for _, card := range cards {
		byValue[card.Value] = append(byValue[card.Value], card)
	}
	for value, pair := range byValue {
		require.Len(t, pair, 2, "value %q must appear exactly twice", value)
		assert.Equal(t, pair[0].PairID, pair[1].PairID)
	}

	require.Contains(t, byValue, "A")
	require.Contains(t, byValue, "B")
	assert.False(t, byValue["A"][0].IsDecoy)

	decoyValues := 0
	for value, pair := range byValue {
		if pair[0].IsDecoy {
			decoyValues++
			assert.NotContains(t, "AB", value, "decoys never reuse key characters")
		}
	}
	assert.Equal(t, 3, decoyValues)
}

func TestGenerateSliderPuzzle(t *testing.T) {
	puzzle := GenerateSliderPuzzle()
	require.Len(t, puzzle, 9)

	seen := map[int]bool{}
	for _, v := range puzzle {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 8)
		assert.False(t, seen[v], "tiles must be a permutation")
		seen[v] = true
	}
}

func TestVerifySliderSolution(t *testing.T) {
	assert.True(t, VerifySliderSolution([]int{1, 2, 3, 4, 5, 6, 7, 8, 0}))

	assert.False(t, VerifySliderSolution([]int{2, 3, 4, 5, 6, 7, 8, 0, 1}), "rotation rejected")
	assert.False(t, VerifySliderSolution([]int{2, 1, 3, 4, 5, 6, 7, 8, 0}), "transposition rejected")
	assert.False(t, VerifySliderSolution([]int{1, 2, 3, 4, 5, 6, 7, 8}), "short state rejected")
	assert.False(t, VerifySliderSolution(nil))
}

func TestGenerateScrambleNeverReturnsOriginal(t *testing.T) {
	for i := 0; i < 200; i++ {
		scrambled, word := GenerateScramble()
		require.NotNil(t, word)
		assert.NotEqual(t, word.Word, scrambled)
		assert.Len(t, scrambled, len(word.Word))

		// Same multiset of letters
		a := strings.Split(scrambled, "")
		b := strings.Split(word.Word, "")
		assert.ElementsMatch(t, a, b)
		assert.NotEmpty(t, word.Hint)
	}
}

func TestVerifyScramble(t *testing.T) {
	assert.True(t, VerifyScramble("ENCRYPTION", "ENCRYPTION"))
	assert.True(t, VerifyScramble("encryption", "ENCRYPTION"))
	assert.True(t, VerifyScramble("  Encryption \n", "ENCRYPTION"))
	assert.False(t, VerifyScramble("DECRYPTION", "ENCRYPTION"))
	assert.False(t, VerifyScramble("", "ENCRYPTION"))
}
