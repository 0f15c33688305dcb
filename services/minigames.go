// services/minigames.go - Puzzle generators and verifiers for the five minigames
package services

import (
	"math/rand"
	"strconv"
	"strings"

	"cryptobay/models"
)

const wheelAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// quizBank is the fixed crypto-fundamentals question bank the quiz game
// samples from. Answer indexes are server-side only.
var quizBank = []models.QuizQuestion{
	{
		Question: "What does AES stand for?",
		Options:  []string{"Advanced Encryption Standard", "Automatic Encryption System", "Applied Electronic Security", "Abstract Encoding Scheme"},
		Answer:   0,
	},
	{
		Question: "Which encryption is asymmetric?",
		Options:  []string{"AES", "DES", "RSA", "XOR"},
		Answer:   2,
	},
	{
		Question: "What is the purpose of an IV in encryption?",
		Options:  []string{"Speed up encryption", "Add randomness", "Compress data", "Verify integrity"},
		Answer:   1,
	},
	{
		Question: "Which hash function is considered insecure?",
		Options:  []string{"SHA-256", "SHA-512", "MD5", "SHA-3"},
		Answer:   2,
	},
	{
		Question: "What does XOR mean?",
		Options:  []string{"Extra Operational Register", "Exclusive OR", "Extended Output Result", "External Operation Request"},
		Answer:   1,
	},
	{
		Question: "What key size does AES-256 use?",
		Options:  []string{"128 bits", "192 bits", "256 bits", "512 bits"},
		Answer:   2,
	},
	{
		Question: "What is a Caesar cipher?",
		Options:  []string{"Substitution cipher", "Block cipher", "Stream cipher", "Hash function"},
		Answer:   0,
	},
	{
		Question: "What does SSL stand for?",
		Options:  []string{"Secure Sockets Layer", "System Security Lock", "Safe Socket Link", "Secure System Login"},
		Answer:   0,
	},
	{
		Question: "What is a rainbow table used for?",
		Options:  []string{"Color encryption", "Password cracking", "Data compression", "Network routing"},
		Answer:   1,
	},
	{
		Question: "What is the purpose of salt in hashing?",
		Options:  []string{"Speed up hashing", "Prevent rainbow table attacks", "Compress data", "Encrypt the hash"},
		Answer:   1,
	},
}

// ScrambleWord is one (word, hint) pair from the scramble term list.
type ScrambleWord struct {
	Word string
	Hint string
}

var scrambleWords = []ScrambleWord{
	{"ENCRYPTION", "Process of encoding data"},
	{"DECRYPTION", "Process of decoding data"},
	{"ALGORITHM", "Set of rules for calculations"},
	{"CIPHERTEXT", "Encrypted message"},
	{"PLAINTEXT", "Unencrypted message"},
	{"SYMMETRIC", "Same key for encrypt/decrypt"},
	{"ASYMMETRIC", "Different keys for encrypt/decrypt"},
	{"HASHING", "One-way function"},
	{"SECURITY", "Protection from threats"},
	{"CRYPTOGRAPHY", "Science of secret writing"},
}

// WheelSegment is one slice of the spin wheel. IsCorrect marks segments
// carrying actual key characters; the client renders both alike.
type WheelSegment struct {
	Char      string `json:"char"`
	IsCorrect bool   `json:"is_correct"`
}

// GenerateWheelSegments builds the wheel for a key part: one correct segment
// per character plus max(8-len, 4) random decoys, shuffled.
func GenerateWheelSegments(keyPart string) []WheelSegment {
	var segments []WheelSegment

	for _, ch := range keyPart {
		segments = append(segments, WheelSegment{
			Char:      strings.ToUpper(string(ch)),
			IsCorrect: true,
		})
	}

	decoyCount := 8 - len(keyPart)
	if decoyCount < 4 {
		decoyCount = 4
	}
	for i := 0; i < decoyCount; i++ {
		segments = append(segments, WheelSegment{
			Char: string(wheelAlphabet[rand.Intn(len(wheelAlphabet))]),
		})
	}

	rand.Shuffle(len(segments), func(i, j int) {
		segments[i], segments[j] = segments[j], segments[i]
	})
	return segments
}

// GetQuizQuestions samples count questions from the bank without replacement.
func GetQuizQuestions(count int) []models.QuizQuestion {
	if count > len(quizBank) {
		count = len(quizBank)
	}
	perm := rand.Perm(len(quizBank))
	selected := make([]models.QuizQuestion, count)
	for i := 0; i < count; i++ {
		selected[i] = quizBank[perm[i]]
	}
	return selected
}

// VerifyQuizAnswers compares submitted answer indexes positionally against
// the exact question list that was served. Returns (correct, total).
func VerifyQuizAnswers(questions []models.QuizQuestion, answers []int) (int, int) {
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.Answer {
			correct++
		}
	}
	return correct, len(questions)
}

// QuizPassScore is the minimum correct answers to reveal the quiz fragment.
const QuizPassScore = 2

// MemoryCard is one face-down card in the memory match game.
type MemoryCard struct {
	ID      string `json:"id"`
	Value   string `json:"value"`
	PairID  int    `json:"pair_id"`
	IsDecoy bool   `json:"is_decoy,omitempty"`
}

// GenerateMemoryCards builds a matching pair per key character plus up to
// three decoy pairs drawn from letters not present in the key.
func GenerateMemoryCards(keyPart string) []MemoryCard {
	var cards []MemoryCard
	chars := strings.Split(strings.ToUpper(keyPart), "")

	for i, ch := range chars {
		cards = append(cards,
			MemoryCard{ID: strconv.Itoa(i) + "a", Value: ch, PairID: i},
			MemoryCard{ID: strconv.Itoa(i) + "b", Value: ch, PairID: i},
		)
	}

	used := make(map[string]bool, len(chars))
	for _, ch := range chars {
		used[ch] = true
	}
	var pool []string
	for _, ch := range strings.Split("ABCDEFGHIJKLMNOPQRSTUVWXYZ", "") {
		if !used[ch] {
			pool = append(pool, ch)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	decoyCount := 3
	if decoyCount > len(pool) {
		decoyCount = len(pool)
	}
	for i := 0; i < decoyCount; i++ {
		idx := len(chars) + i
		cards = append(cards,
			MemoryCard{ID: strconv.Itoa(idx) + "a", Value: pool[i], PairID: idx, IsDecoy: true},
			MemoryCard{ID: strconv.Itoa(idx) + "b", Value: pool[i], PairID: idx, IsDecoy: true},
		)
	}

	rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	return cards
}

// sliderSolution is the canonical solved 3x3 state: tiles 1-8, 0 empty.
var sliderSolution = []int{1, 2, 3, 4, 5, 6, 7, 8, 0}

// GenerateSliderPuzzle scrambles the solved state with 100 random legal
// adjacent slides. Only legal moves are applied, so the result is always
// solvable.
func GenerateSliderPuzzle() []int {
	puzzle := make([]int, len(sliderSolution))
	copy(puzzle, sliderSolution)

	for n := 0; n < 100; n++ {
		emptyIdx := 0
		for i, v := range puzzle {
			if v == 0 {
				emptyIdx = i
				break
			}
		}

		var moves []int
		if emptyIdx >= 3 {
			moves = append(moves, emptyIdx-3) // up
		}
		if emptyIdx < 6 {
			moves = append(moves, emptyIdx+3) // down
		}
		if emptyIdx%3 > 0 {
			moves = append(moves, emptyIdx-1) // left
		}
		if emptyIdx%3 < 2 {
			moves = append(moves, emptyIdx+1) // right
		}

		swapIdx := moves[rand.Intn(len(moves))]
		puzzle[emptyIdx], puzzle[swapIdx] = puzzle[swapIdx], puzzle[emptyIdx]
	}

	return puzzle
}

// VerifySliderSolution accepts only the exact canonical solved arrangement.
func VerifySliderSolution(state []int) bool {
	if len(state) != len(sliderSolution) {
		return false
	}
	for i, v := range sliderSolution {
		if state[i] != v {
			return false
		}
	}
	return true
}

// GenerateScramble picks a random term and returns a permutation guaranteed
// to differ from the original word.
func GenerateScramble() (scrambled string, word *ScrambleWord) {
	word = &scrambleWords[rand.Intn(len(scrambleWords))]

	letters := strings.Split(word.Word, "")
	for {
		rand.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
		scrambled = strings.Join(letters, "")
		if scrambled != word.Word {
			return scrambled, word
		}
	}
}

// VerifyScramble checks a submission against the original word,
// case-insensitively and with surrounding whitespace trimmed.
func VerifyScramble(submitted, word string) bool {
	return strings.ToUpper(strings.TrimSpace(submitted)) == strings.ToUpper(word)
}
