// models/session.go - Minigame session state (generate → complete handshake)
package models

import (
	"encoding/json"
	"time"
)

// QuizQuestion is one question from the crypto quiz bank. The Answer index
// is server-side only and never serialized to clients.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"-"`
}

// MinigameSession is the short-lived record binding a generated puzzle to a
// (user, challenge, game_type) tuple. It is the Issued state of the
// Issued → Completed handshake: a completion request without a live session
// is rejected, and a consumed session cannot be replayed.
type MinigameSession struct {
	Token       string `json:"token"`
	UserID      uint   `json:"user_id"`
	ChallengeID string `json:"challenge_id"`
	GameType    string `json:"game_type"`

	// KeyPart is the fragment revealed when this session completes
	KeyPart   string `json:"key_part"`
	PartIndex int    `json:"part_index"`

	// QuestionsJSON holds the exact sampled quiz question set, answers included
	QuestionsJSON string `json:"questions_json,omitempty"`

	// Word is the unscrambled answer for scramble sessions
	Word string `json:"word,omitempty"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *MinigameSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s *MinigameSession) Questions() ([]QuizQuestion, error) {
	var questions []struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Answer   int      `json:"answer"`
	}
	if s.QuestionsJSON == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(s.QuestionsJSON), &questions); err != nil {
		return nil, err
	}
	out := make([]QuizQuestion, len(questions))
	for i, q := range questions {
		out[i] = QuizQuestion{Question: q.Question, Options: q.Options, Answer: q.Answer}
	}
	return out, nil
}

func (s *MinigameSession) SetQuestions(questions []QuizQuestion) error {
	raw := make([]struct {
		Question string   `json:"question"`
		Options  []string `json:"options"`
		Answer   int      `json:"answer"`
	}, len(questions))
	for i, q := range questions {
		raw[i].Question = q.Question
		raw[i].Options = q.Options
		raw[i].Answer = q.Answer
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	s.QuestionsJSON = string(data)
	return nil
}
