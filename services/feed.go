// services/feed.go - Live solve feed broadcast hub
package services

import (
	"log"
	"sync"
	"time"
)

// SolveEvent is one item on the live feed: a flag solve or a minigame
// completion. Key material never rides on the feed, only the game type.
type SolveEvent struct {
	Kind        string    `json:"kind"` // "flag" or "minigame"
	Username    string    `json:"username"`
	ChallengeID string    `json:"challenge_id"`
	GameType    string    `json:"game_type,omitempty"`
	Points      int       `json:"points,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// FeedHub fans solve events out to connected WebSocket subscribers.
// Slow subscribers are dropped rather than blocking the broadcaster.
type FeedHub struct {
	mu          sync.Mutex
	subscribers map[chan SolveEvent]struct{}
}

func NewFeedHub() *FeedHub {
	return &FeedHub{subscribers: make(map[chan SolveEvent]struct{})}
}

// Subscribe registers a listener. The caller must Unsubscribe when done.
func (h *FeedHub) Subscribe() chan SolveEvent {
	ch := make(chan SolveEvent, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *FeedHub) Unsubscribe(ch chan SolveEvent) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers an event to every subscriber, skipping any whose
// buffer is full.
func (h *FeedHub) Broadcast(event SolveEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("Feed subscriber too slow, dropping event %s/%s", event.Kind, event.ChallengeID)
		}
	}
}

// SubscriberCount reports the number of connected feed listeners.
func (h *FeedHub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
