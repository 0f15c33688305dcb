// handlers/challenges.go - Challenge listing, flag submission, hints
package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"cryptobay/database"
	"cryptobay/middleware"
	"cryptobay/models"
	"cryptobay/services"
)

var (
	challengeManager *services.ChallengeManager
	keyReveal        *services.KeyRevealManager
	sessionStore     services.SessionStore
	feedHub          *services.FeedHub
)

// InitHandlers wires the process-scoped services into the handler package.
func InitHandlers(cm *services.ChallengeManager, kr *services.KeyRevealManager, store services.SessionStore, hub *services.FeedHub) {
	challengeManager = cm
	keyReveal = kr
	sessionStore = store
	feedHub = hub
}

type SubmitFlagRequest struct {
	Flag string `json:"flag"`
}

// GetChallenges lists active challenges. The optional mode query filters to
// the verification track's difficulty and reports the user's progress
// toward the role threshold.
func GetChallenges(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	challenges, err := challengeManager.GetAllChallenges()
	if err != nil {
		return fiber.NewError(500, "Failed to load challenges")
	}

	mode := c.Query("mode")
	var progress string

	switch mode {
	case "buyer":
		filtered := make(map[string]map[string]interface{})
		for id, v := range challenges {
			if v["difficulty"] == string(models.DifficultyEasy) {
				filtered[id] = v
			}
		}
		challenges = filtered

		var buyer models.Buyer
		solved := 0
		if err := database.GetDB().Where("user_id = ?", userID).First(&buyer).Error; err == nil {
			for _, id := range buyer.SolvedChallenges() {
				if _, ok := challenges[id]; ok {
					solved++
				}
			}
		}
		progress = fmt.Sprintf("%d/%d easy challenges completed", solved, models.BuyerVerifyThreshold)

	case "seller":
		filtered := make(map[string]map[string]interface{})
		for id, v := range challenges {
			if v["difficulty"] == string(models.DifficultyHard) {
				filtered[id] = v
			}
		}
		challenges = filtered

		var seller models.Seller
		solved := 0
		if err := database.GetDB().Where("user_id = ?", userID).First(&seller).Error; err == nil {
			for _, id := range seller.SolvedChallenges() {
				if _, ok := challenges[id]; ok {
					solved++
				}
			}
		}
		progress = fmt.Sprintf("%d/%d hard challenges completed", solved, models.SellerVerifyThreshold)
	}

	resp := fiber.Map{
		"success":    true,
		"challenges": challenges,
	}
	if progress != "" {
		resp["mode"] = mode
		resp["progress"] = progress
	}
	return c.JSON(resp)
}

// GetChallenge returns one challenge's client view. Verification modes only
// admit the matching difficulty tier.
func GetChallenge(c *fiber.Ctx) error {
	challenge, err := challengeManager.GetChallenge(c.Params("challengeID"))
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
	}
	if err != nil {
		return fiber.NewError(500, "Failed to load challenge")
	}

	mode := c.Query("mode")
	if mode == "buyer" && challenge.Difficulty != models.DifficultyEasy {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"error":   "Buyers can only attempt easy challenges for verification.",
		})
	}
	if mode == "seller" && challenge.Difficulty != models.DifficultyHard {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"error":   "Sellers can only attempt hard challenges for verification.",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"challenge": challenge.ClientView(),
	})
}

// SubmitFlag verifies a flag submission. On a verification-mode success the
// solve is added to the user's buyer/seller solved set and the role
// threshold is re-evaluated. Rate limiting runs in middleware before this.
func SubmitFlag(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	username, _ := middleware.GetUsername(c)

	var req SubmitFlagRequest
	if err := c.BodyParser(&req); err != nil || req.Flag == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Please provide a flag."})
	}

	challengeID := c.Params("challengeID")
	ok, message, err := challengeManager.SubmitFlag(challengeID, userID, req.Flag)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
	}
	if err != nil {
		return fiber.NewError(500, "Failed to verify flag")
	}

	resp := fiber.Map{
		"success": ok,
		"message": message,
	}

	if ok {
		challenge, _ := challengeManager.GetChallenge(challengeID)
		points := 0
		if challenge != nil {
			points = challenge.Points
		}
		feedHub.Broadcast(services.SolveEvent{
			Kind:        "flag",
			Username:    username,
			ChallengeID: challengeID,
			Points:      points,
		})

		db := database.GetDB()
		switch c.Query("mode") {
		case "buyer":
			var buyer models.Buyer
			if err := db.Where("user_id = ?", userID).FirstOrCreate(&buyer, models.Buyer{UserID: userID}).Error; err == nil {
				if err := buyer.AddSolvedChallenge(challengeID); err == nil {
					db.Save(&buyer)
				}
				resp["buyer_verified"] = buyer.IsVerified()
				if buyer.IsVerified() {
					resp["message"] = "Congratulations! You have completed enough challenges to view products."
				}
			}
		case "seller":
			var seller models.Seller
			if err := db.Where("user_id = ?", userID).FirstOrCreate(&seller, models.Seller{UserID: userID}).Error; err == nil {
				if err := seller.AddSolvedChallenge(challengeID); err == nil {
					db.Save(&seller)
				}
				resp["seller_verified"] = seller.IsVerified()
				if seller.IsVerified() {
					resp["message"] = "Congratulations! You have completed enough challenges to sell products."
				}
			}
		}
	}

	return c.JSON(resp)
}

// UseHint hands out the next unused hint for this user on a challenge.
func UseHint(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	hint, message, err := challengeManager.UseHint(c.Params("challengeID"), userID)
	if errors.Is(err, services.ErrNotFound) {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
	}
	if err != nil {
		return fiber.NewError(500, "Failed to fetch hint")
	}

	if hint == "" {
		return c.JSON(fiber.Map{"success": false, "message": message})
	}
	return c.JSON(fiber.Map{"success": true, "hint": hint, "message": message})
}
