package item

import (
	"sync"

	"github.com/google/uuid"
)

type slotKey struct {
	id   uuid.UUID
	slot Slot
}

// SlotStore remembers the last observed item content signature per
// (player, slot). It backs the reconciler's idempotence: polling the same
// item twice in the same slot triggers no diff.
type SlotStore struct {
	mu   sync.Mutex
	seen map[slotKey]string
}

func NewSlotStore() *SlotStore {
	return &SlotStore{seen: make(map[slotKey]string)}
}

// Observe records sig as the current content of the slot and reports
// whether it differs from the previous observation. A never-observed slot
// counts as holding the empty signature.
func (s *SlotStore) Observe(id uuid.UUID, slot Slot, sig string) bool {
	key := slotKey{id: id, slot: slot}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.seen[key]
	if prev == sig {
		return false
	}
	if sig == "" {
		delete(s.seen, key)
	} else {
		s.seen[key] = sig
	}
	return true
}

// Forget drops all slot observations for a player, typically on session end.
func (s *SlotStore) Forget(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.seen {
		if key.id == id {
			delete(s.seen, key)
		}
	}
}
