package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedHubBroadcast(t *testing.T) {
	hub := NewFeedHub()

	a := hub.Subscribe()
	b := hub.Subscribe()
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.Broadcast(SolveEvent{Kind: "flag", Username: "alice", ChallengeID: "xor_easy", Points: 100})

	for _, ch := range []chan SolveEvent{a, b} {
		select {
		case event := <-ch:
			assert.Equal(t, "flag", event.Kind)
			assert.Equal(t, "alice", event.Username)
			assert.False(t, event.OccurredAt.IsZero(), "timestamp is stamped on broadcast")
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestFeedHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewFeedHub()
	ch := hub.Subscribe()

	hub.Unsubscribe(ch)
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-ch
	assert.False(t, open)

	// Double unsubscribe is a no-op, not a panic
	hub.Unsubscribe(ch)
}

func TestFeedHubDropsSlowSubscriber(t *testing.T) {
	hub := NewFeedHub()
	ch := hub.Subscribe()

	// Fill the buffer and keep broadcasting; the hub must not block
	for i := 0; i < 40; i++ {
		hub.Broadcast(SolveEvent{Kind: "minigame", ChallengeID: "aes_easy", GameType: GameWheel})
	}

	require.Equal(t, 16, len(ch), "buffer capped, overflow dropped")
	hub.Unsubscribe(ch)
}
