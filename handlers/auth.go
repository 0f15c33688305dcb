// handlers/auth.go
package handlers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"cryptobay/database"
	"cryptobay/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token,omitempty"`
	User    UserInfo `json:"user,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type UserInfo struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates a new account and returns a signed token.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Invalid request body"})
	}

	if req.Username == "" || req.Password == "" {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Username and password are required"})
	}

	db := database.GetDB()

	var existing models.User
	if err := db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return c.Status(409).JSON(AuthResponse{Success: false, Error: "Username already exists"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to hash password"})
	}

	user := models.User{
		Username:  req.Username,
		Password:  string(hashed),
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	if err := db.Create(&user).Error; err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to create account"})
	}

	// Verification tracks exist from day one; solves fill them in
	db.Create(&models.Buyer{UserID: user.ID, CreatedAt: time.Now()})
	db.Create(&models.Seller{UserID: user.ID, CreatedAt: time.Now()})

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to generate token"})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    userInfo(user),
	})
}

// Login verifies credentials and returns a signed token.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(AuthResponse{Success: false, Error: "Invalid request body"})
	}

	db := database.GetDB()

	var user models.User
	if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return c.Status(401).JSON(AuthResponse{Success: false, Error: "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(401).JSON(AuthResponse{Success: false, Error: "Invalid credentials"})
	}

	if !user.IsActive {
		return c.Status(403).JSON(AuthResponse{Success: false, Error: "Account is disabled"})
	}

	db.Model(&user).Update("last_login", time.Now())

	token, err := generateToken(user)
	if err != nil {
		return c.Status(500).JSON(AuthResponse{Success: false, Error: "Failed to generate token"})
	}

	return c.JSON(AuthResponse{
		Success: true,
		Token:   token,
		User:    userInfo(user),
	})
}

func generateToken(user models.User) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "cryptobay-secret-change-in-production"
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func userInfo(user models.User) UserInfo {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	return UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		Email:     email,
		CreatedAt: user.CreatedAt,
	}
}
