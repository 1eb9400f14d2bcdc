// pkg/memcache/watermarks.go
package mem

import "sync"

// WatermarkStore tracks the id of the most recently relayed checkin per
// account key. It is the only shared mutable state between the webhook
// path and the poll loop; the lock is scoped to map access only and is
// never held across a network call.
type WatermarkStore interface {
	// Get returns the watermark for key, or "" if none recorded yet.
	Get(key string) string

	// Advance records checkinID as the newest relayed checkin for key.
	// Last writer wins.
	Advance(key string, checkinID string)

	// Snapshot copies the whole map, for a poll iteration to reconcile
	// against without holding the lock.
	Snapshot() map[string]string

	// Hydrate seeds the map from durable storage. Existing entries are
	// not overwritten, so a push handled before hydration wins.
	Hydrate(stored map[string]string)
}

type Watermarks struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewWatermarks() *Watermarks {
	return &Watermarks{
		data: make(map[string]string),
	}
}

func (s *Watermarks) Hydrate(stored map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, id := range stored {
		if _, ok := s.data[key]; !ok && id != "" {
			s.data[key] = id
		}
	}
}

func (s *Watermarks) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

func (s *Watermarks) Advance(key string, checkinID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = checkinID
}

func (s *Watermarks) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.data))
	for key, id := range s.data {
		out[key] = id
	}
	return out
}
