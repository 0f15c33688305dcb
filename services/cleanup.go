package services

import (
	"log"
	"time"
)

// CleanupService periodically sweeps expired minigame sessions out of the
// in-memory store. When sessions live in Redis the TTL handles expiry and
// this service is not started.
type CleanupService struct {
	store    *MemorySessionStore
	interval time.Duration
	stop     chan struct{}
}

var cleanupService *CleanupService

// InitCleanupService initializes the singleton cleanup service.
func InitCleanupService(store *MemorySessionStore) {
	cleanupService = &CleanupService{
		store:    store,
		interval: 10 * time.Minute,
		stop:     make(chan struct{}),
	}
}

// GetCleanupService returns the initialized cleanup service.
func GetCleanupService() *CleanupService {
	return cleanupService
}

// Start runs the sweep loop until Stop is called.
func (s *CleanupService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := s.store.Sweep(time.Now().UTC()); removed > 0 {
					log.Printf("✅ Cleaned up %d expired minigame sessions", removed)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop stops the sweep loop.
func (s *CleanupService) Stop() {
	close(s.stop)
}
