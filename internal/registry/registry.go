package registry

import "sync"

// Skill is a levelable discipline (e.g. "core:mining").
type Skill struct {
	ID ID
}

// Stat is a primary attribute whose effective value is assembled from
// modifiers (e.g. "core:strength").
type Stat struct {
	ID ID
}

// Trait is a secondary attribute derived from stats and modifiers.
type Trait struct {
	ID ID
}

// Reloadable is implemented by identifiers whose effective value can be
// recomputed after their contributing modifiers change. Stats and traits are
// the only reloadable kinds.
type Reloadable interface {
	ReloadableID() ID
}

func (s Stat) ReloadableID() ID  { return s.ID }
func (t Trait) ReloadableID() ID { return t.ID }

// Registry maps namespaced IDs to registered skills, stats and traits.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	skills map[ID]Skill
	stats  map[ID]Stat
	traits map[ID]Trait
}

func New() *Registry {
	return &Registry{
		skills: make(map[ID]Skill),
		stats:  make(map[ID]Stat),
		traits: make(map[ID]Trait),
	}
}

func (r *Registry) RegisterSkill(s Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills[s.ID] = s
}

func (r *Registry) RegisterStat(s Stat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats[s.ID] = s
}

func (r *Registry) RegisterTrait(t Trait) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traits[t.ID] = t
}

// Skill looks up a registered skill. The second return value reports whether
// the id is known.
func (r *Registry) Skill(id ID) (Skill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.skills[id]
	return s, ok
}

func (r *Registry) Stat(id ID) (Stat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stats[id]
	return s, ok
}

func (r *Registry) Trait(id ID) (Trait, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.traits[id]
	return t, ok
}

// Skills returns all registered skills in unspecified order.
func (r *Registry) Skills() []Skill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Skill, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s)
	}
	return out
}
