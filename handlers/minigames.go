// handlers/minigames.go - Minigame hub and the generate → complete handshake
package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"cryptobay/middleware"
	"cryptobay/models"
	"cryptobay/services"
)

type QuizSubmitRequest struct {
	Answers []int `json:"answers"`
}

type SliderSubmitRequest struct {
	State []int `json:"state"`
}

type ScrambleSubmitRequest struct {
	Answer string `json:"answer"`
}

// clientQuizQuestion is the quiz payload sent to players: no answer index.
type clientQuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

func validGameType(gameType string) bool {
	for _, t := range services.MinigameCycle {
		if t == gameType {
			return true
		}
	}
	return false
}

func loadChallengeParts(challengeID string) (*models.Challenge, []services.KeyPart, error) {
	challenge, err := challengeManager.GetChallenge(challengeID)
	if err != nil {
		return nil, nil, err
	}
	return challenge, keyReveal.SplitKey(challenge.Key(), len(services.MinigameCycle)), nil
}

// GetMinigameHub shows a challenge's minigames, the user's progress, and the
// partially revealed key. Unrevealed fragment values never leave the server;
// clients only see each fragment's length.
func GetMinigameHub(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	challengeID := c.Params("challengeID")
	challenge, parts, err := loadChallengeParts(challengeID)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
	}
	if err != nil {
		return fiber.NewError(500, "Failed to load challenge")
	}

	progress, err := keyReveal.GetUserProgress(userID, challengeID)
	if err != nil {
		return fiber.NewError(500, "Failed to load progress")
	}

	revealedKey, err := keyReveal.GetRevealedKey(userID, challengeID, parts)
	if err != nil {
		return fiber.NewError(500, "Failed to compose key")
	}

	partViews := make([]fiber.Map, len(parts))
	for i, part := range parts {
		view := fiber.Map{
			"index":     part.Index,
			"game_type": part.GameType,
			"length":    len(part.Value),
			"revealed":  false,
		}
		if p, ok := progress[part.GameType]; ok && p.Completed {
			view["revealed"] = true
			view["value"] = p.RevealedPart
		}
		partViews[i] = view
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"challenge":    challenge.ClientView(),
		"key_parts":    partViews,
		"revealed_key": revealedKey,
		"progress":     progress,
	})
}

// StartMinigame generates a puzzle for one game and stores the session-held
// verification state. Re-starting an uncompleted game reissues a fresh
// puzzle; a completed game short-circuits with its revealed fragment.
func StartMinigame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	challengeID := c.Params("challengeID")
	gameType := c.Params("gameType")
	if !validGameType(gameType) {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Unknown minigame type"})
	}

	_, parts, err := loadChallengeParts(challengeID)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
	}
	if err != nil {
		return fiber.NewError(500, "Failed to load challenge")
	}

	part := services.FindPart(parts, gameType)
	if part == nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("The %s game is not available for this challenge.", gameType),
		})
	}

	progress, err := keyReveal.GetUserProgress(userID, challengeID)
	if err != nil {
		return fiber.NewError(500, "Failed to load progress")
	}
	if p, ok := progress[gameType]; ok && p.Completed {
		return c.JSON(fiber.Map{
			"success":           true,
			"already_completed": true,
			"revealed_part":     p.RevealedPart,
			"message":           fmt.Sprintf("Already completed! Key part: %s", p.RevealedPart),
		})
	}

	session := services.NewMinigameSession(userID, challengeID, gameType, part.Value, part.Index, services.DefaultSessionTTL)

	puzzle := fiber.Map{}
	switch gameType {
	case services.GameWheel:
		puzzle["segments"] = services.GenerateWheelSegments(part.Value)
		puzzle["key_part_length"] = len(part.Value)
	case services.GameQuiz:
		questions := services.GetQuizQuestions(3)
		if err := session.SetQuestions(questions); err != nil {
			return fiber.NewError(500, "Failed to prepare quiz")
		}
		clientQuestions := make([]clientQuizQuestion, len(questions))
		for i, q := range questions {
			clientQuestions[i] = clientQuizQuestion{Question: q.Question, Options: q.Options}
		}
		puzzle["questions"] = clientQuestions
	case services.GameMemory:
		puzzle["cards"] = services.GenerateMemoryCards(part.Value)
	case services.GameSlider:
		puzzle["puzzle"] = services.GenerateSliderPuzzle()
	case services.GameScramble:
		scrambled, word := services.GenerateScramble()
		session.Word = word.Word
		puzzle["scrambled"] = scrambled
		puzzle["hint"] = word.Hint
	}

	if err := sessionStore.Put(c.Context(), session); err != nil {
		return fiber.NewError(500, "Failed to store session")
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"token":      session.Token,
		"game_type":  gameType,
		"expires_at": session.ExpiresAt,
		"puzzle":     puzzle,
	})
}

// CompleteMinigame verifies a completion against the session-held state,
// records progress idempotently, and invalidates the session so a stale
// puzzle cannot be replayed.
func CompleteMinigame(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	username, _ := middleware.GetUsername(c)

	challengeID := c.Params("challengeID")
	gameType := c.Params("gameType")
	if !validGameType(gameType) {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Unknown minigame type"})
	}

	session, err := sessionStore.Get(c.Context(), userID, challengeID, gameType)
	if errors.Is(err, services.ErrInvalidSession) {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid session. Start the game again.",
		})
	}
	if err != nil {
		return fiber.NewError(500, "Failed to load session")
	}

	switch gameType {
	case services.GameWheel, services.GameMemory:
		// Completion is client-asserted for these two; the session binding
		// is the only server-side check. Accepted trust boundary.

	case services.GameQuiz:
		var req QuizSubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
		}
		questions, err := session.Questions()
		if err != nil {
			return fiber.NewError(500, "Failed to load quiz state")
		}
		correct, total := services.VerifyQuizAnswers(questions, req.Answers)
		if correct < services.QuizPassScore {
			return c.JSON(fiber.Map{
				"success": false,
				"correct": correct,
				"total":   total,
				"message": fmt.Sprintf("You got %d/%d. Need at least %d correct!", correct, total, services.QuizPassScore),
			})
		}

	case services.GameSlider:
		var req SliderSubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
		}
		if !services.VerifySliderSolution(req.State) {
			return c.JSON(fiber.Map{"success": false, "message": "Puzzle not solved yet!"})
		}

	case services.GameScramble:
		var req ScrambleSubmitRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
		}
		if !services.VerifyScramble(req.Answer, session.Word) {
			return c.JSON(fiber.Map{"success": false, "message": "Incorrect! Try again."})
		}
	}

	if err := keyReveal.MarkGameCompleted(userID, challengeID, gameType, session.KeyPart, session.PartIndex); err != nil {
		return fiber.NewError(500, "Failed to record completion")
	}
	if err := sessionStore.Delete(c.Context(), userID, challengeID, gameType); err != nil {
		return fiber.NewError(500, "Failed to clear session")
	}

	feedHub.Broadcast(services.SolveEvent{
		Kind:        "minigame",
		Username:    username,
		ChallengeID: challengeID,
		GameType:    gameType,
	})

	_, parts, err := loadChallengeParts(challengeID)
	if err != nil {
		return fiber.NewError(500, "Failed to load challenge")
	}
	revealedKey, err := keyReveal.GetRevealedKey(userID, challengeID, parts)
	if err != nil {
		return fiber.NewError(500, "Failed to compose key")
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"revealed_part": session.KeyPart,
		"revealed_key":  revealedKey,
		"message":       fmt.Sprintf("Key part revealed: %s", session.KeyPart),
	})
}
