// Package user holds the in-memory player record mutated by the live
// simulation, the lightweight offline state view, and the session manager.
//
// A User is confined to its owning session: concurrent modifier edits for
// the same player must be serialized by the caller (the simulation thread).
// Different players' records are independent.
package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
)

// StartLevel is the level every skill begins at. Levels at StartLevel with
// zero xp do not count against a blank profile.
const StartLevel = 1

// ActionBarType enumerates the action bar overlays a player can toggle.
type ActionBarType string

const (
	ActionBarIdle ActionBarType = "idle"
	ActionBarXp   ActionBarType = "xp"
	ActionBarMana ActionBarType = "mana"
)

// ActionBarTypes lists all known action bar overlays.
var ActionBarTypes = []ActionBarType{ActionBarIdle, ActionBarXp, ActionBarMana}

// AbilityData is the generic per-ability auxiliary key/value payload.
type AbilityData map[string]string

// ManaAbilityData tracks the transient state of a mana ability. Only a
// positive cooldown is worth persisting.
type ManaAbilityData struct {
	Cooldown int
}

// UnclaimedItem is a queued item reward not yet handed to the player.
type UnclaimedItem struct {
	Key    string
	Amount int
}

// AntiAfkLog is one anti-idle warning event accumulated during a session.
type AntiAfkLog struct {
	Time    time.Time
	Message string
	Coords  Position
	World   string
}

// User is the in-memory record for one online session.
type User struct {
	UUID          uuid.UUID
	Locale        string // empty means unset
	Mana          float64
	ShouldNotSave bool // transient sessions are never persisted

	SkillLevels map[registry.ID]int
	SkillXp     map[registry.ID]float64

	StatModifiers  map[string]modifier.Modifier
	TraitModifiers map[string]modifier.Modifier
	Multipliers    map[string]modifier.Multiplier

	AbilityData     map[registry.ID]AbilityData
	ManaAbilityData map[registry.ID]ManaAbilityData

	UnclaimedItems []UnclaimedItem

	// DisabledActionBars holds only the overlays the player switched off;
	// the default all-enabled state stays out of storage so blank profiles
	// remain blank.
	DisabledActionBars map[ActionBarType]bool

	Jobs          map[registry.ID]struct{}
	LastJobSelect time.Time

	AntiAfkLogs []AntiAfkLog
}

// New returns an empty default record for the given identity.
func New(id uuid.UUID) *User {
	return &User{
		UUID:               id,
		SkillLevels:        make(map[registry.ID]int),
		SkillXp:            make(map[registry.ID]float64),
		StatModifiers:      make(map[string]modifier.Modifier),
		TraitModifiers:     make(map[string]modifier.Modifier),
		Multipliers:        make(map[string]modifier.Multiplier),
		AbilityData:        make(map[registry.ID]AbilityData),
		ManaAbilityData:    make(map[registry.ID]ManaAbilityData),
		DisabledActionBars: make(map[ActionBarType]bool),
		Jobs:               make(map[registry.ID]struct{}),
	}
}

// AddStatModifier inserts a stat modifier. Re-adding the same name replaces
// the previous entry, never duplicates it.
func (u *User) AddStatModifier(m modifier.Modifier) {
	u.StatModifiers[m.Name] = m
}

// StatModifier returns the stat modifier with the given name, if present.
func (u *User) StatModifier(name string) (modifier.Modifier, bool) {
	m, ok := u.StatModifiers[name]
	return m, ok
}

// RemoveStatModifier deletes a stat modifier by name. Removing an absent
// name is a no-op.
func (u *User) RemoveStatModifier(name string) {
	delete(u.StatModifiers, name)
}

// AddTraitModifier inserts a trait modifier, replacing any previous entry of
// the same name.
func (u *User) AddTraitModifier(m modifier.Modifier) {
	u.TraitModifiers[m.Name] = m
}

func (u *User) TraitModifier(name string) (modifier.Modifier, bool) {
	m, ok := u.TraitModifiers[name]
	return m, ok
}

func (u *User) RemoveTraitModifier(name string) {
	delete(u.TraitModifiers, name)
}

// AddMultiplier inserts a skill-xp multiplier, replacing any previous entry
// of the same name.
func (u *User) AddMultiplier(m modifier.Multiplier) {
	u.Multipliers[m.Name] = m
}

func (u *User) Multiplier(name string) (modifier.Multiplier, bool) {
	m, ok := u.Multipliers[name]
	return m, ok
}

func (u *User) RemoveMultiplier(name string) {
	delete(u.Multipliers, name)
}

// SkillLevel returns the stored level for a skill, or StartLevel when the
// skill was never touched.
func (u *User) SkillLevel(id registry.ID) int {
	if lvl, ok := u.SkillLevels[id]; ok {
		return lvl
	}
	return StartLevel
}

// Blank reports whether the record carries nothing worth storing: no levels
// above StartLevel, no xp, no modifiers and no auxiliary data. Blank
// profiles are eligible for deletion instead of storage.
func (u *User) Blank() bool {
	for id := range u.SkillLevels {
		if u.SkillLevel(id) > StartLevel {
			return false
		}
	}
	for _, xp := range u.SkillXp {
		if xp > 0 {
			return false
		}
	}
	if len(u.StatModifiers) > 0 || len(u.TraitModifiers) > 0 || len(u.Multipliers) > 0 {
		return false
	}
	if len(u.AbilityData) > 0 || len(u.ManaAbilityData) > 0 {
		return false
	}
	if len(u.UnclaimedItems) > 0 || len(u.Jobs) > 0 {
		return false
	}
	for _, disabled := range u.DisabledActionBars {
		if disabled {
			return false
		}
	}
	return true
}

// ActionBarEnabled reports whether the given overlay is visible (the
// default when never toggled).
func (u *User) ActionBarEnabled(t ActionBarType) bool {
	return !u.DisabledActionBars[t]
}

// SetActionBarEnabled toggles an overlay. Enabling removes the stored flag
// so the record can return to blank.
func (u *User) SetActionBarEnabled(t ActionBarType, enabled bool) {
	if enabled {
		delete(u.DisabledActionBars, t)
		return
	}
	u.DisabledActionBars[t] = true
}
