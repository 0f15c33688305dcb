// models/user.go
package models

import (
	"encoding/json"
	"time"
)

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Username string  `gorm:"uniqueIndex;not null" json:"username"`
	Email    *string `gorm:"uniqueIndex" json:"email,omitempty"`
	Password string  `gorm:"not null" json:"-"`
	IsAdmin  bool    `gorm:"default:false" json:"is_admin"`
	IsActive bool    `gorm:"default:true" json:"is_active"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`

	// Relationships
	BuyerProfile  *Buyer  `gorm:"foreignKey:UserID" json:"buyer_profile,omitempty"`
	SellerProfile *Seller `gorm:"foreignKey:UserID" json:"seller_profile,omitempty"`
}

// Buyer is a user's buyer-verification track. Verification is derived from
// the set of solved easy challenges, never stored as a flat count.
type Buyer struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`

	// SolvedChallengesJSON holds a JSON array of challenge ids
	SolvedChallengesJSON string    `gorm:"type:text" json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Seller is a user's seller-verification track over hard challenges.
type Seller struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID uint  `gorm:"uniqueIndex;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"-"`

	SolvedChallengesJSON string    `gorm:"type:text" json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Verification thresholds for marketplace roles.
const (
	BuyerVerifyThreshold  = 3 // easy challenge solves
	SellerVerifyThreshold = 5 // hard challenge solves
)

func (b *Buyer) SolvedChallenges() []string {
	return decodeSolvedSet(b.SolvedChallengesJSON)
}

func (b *Buyer) AddSolvedChallenge(challengeID string) error {
	updated, err := encodeSolvedSet(b.SolvedChallengesJSON, challengeID)
	if err != nil {
		return err
	}
	b.SolvedChallengesJSON = updated
	return nil
}

func (b *Buyer) IsVerified() bool {
	return len(b.SolvedChallenges()) >= BuyerVerifyThreshold
}

func (s *Seller) SolvedChallenges() []string {
	return decodeSolvedSet(s.SolvedChallengesJSON)
}

func (s *Seller) AddSolvedChallenge(challengeID string) error {
	updated, err := encodeSolvedSet(s.SolvedChallengesJSON, challengeID)
	if err != nil {
		return err
	}
	s.SolvedChallengesJSON = updated
	return nil
}

func (s *Seller) IsVerified() bool {
	return len(s.SolvedChallenges()) >= SellerVerifyThreshold
}

func decodeSolvedSet(raw string) []string {
	var ids []string
	if raw == "" {
		return ids
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return ids
}

// encodeSolvedSet appends challengeID to the encoded set if absent.
func encodeSolvedSet(raw, challengeID string) (string, error) {
	ids := decodeSolvedSet(raw)
	for _, id := range ids {
		if id == challengeID {
			return raw, nil
		}
	}
	ids = append(ids, challengeID)
	data, err := json.Marshal(ids)
	if err != nil {
		return raw, err
	}
	return string(data), nil
}

func (Buyer) TableName() string {
	return "buyers"
}

func (Seller) TableName() string {
	return "sellers"
}
