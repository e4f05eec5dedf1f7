package user

import (
	"github.com/google/uuid"

	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
)

// State is the lightweight offline view of a player: levels, xp, modifiers
// and mana, without the session-only fields of User. Bulk consumers work
// with States so they never touch a live record.
type State struct {
	UUID           uuid.UUID
	SkillLevels    map[registry.ID]int
	SkillXp        map[registry.ID]float64
	StatModifiers  map[string]modifier.Modifier
	TraitModifiers map[string]modifier.Modifier
	Mana           float64
}

// EmptyState returns the default state for a player with no stored rows.
// Absence of a player is a valid, non-exceptional condition.
func EmptyState(id uuid.UUID) State {
	return State{
		UUID:           id,
		SkillLevels:    make(map[registry.ID]int),
		SkillXp:        make(map[registry.ID]float64),
		StatModifiers:  make(map[string]modifier.Modifier),
		TraitModifiers: make(map[string]modifier.Modifier),
	}
}
