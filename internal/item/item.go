// Package item drives the modifier lifecycle around equipped and consumed
// items: the periodic equipment reconciler, the explicit hand-swap path and
// the consumption handler. The package decides when modifiers change and
// which identifiers must be recomputed; deriving equip modifiers from item
// contents is delegated to external collaborators.
package item

import (
	"context"

	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// Slot identifies an equipment slot tracked for modifiers.
type Slot int

const (
	SlotMainHand Slot = iota
	SlotOffHand
)

func (s Slot) String() string {
	switch s {
	case SlotMainHand:
		return "main_hand"
	case SlotOffHand:
		return "off_hand"
	default:
		return "unknown"
	}
}

// Item is the minimal view of an engine item stack this package needs.
// Comparison is by content signature, never by reference.
type Item interface {
	// Signature returns a stable content signature; items with equal
	// signatures grant identical modifiers.
	Signature() string

	// Empty reports an air/absent item, which contributes no modifiers.
	Empty() bool
}

// signatureOf tolerates nil and empty items, mapping both to the empty
// signature.
func signatureOf(it Item) string {
	if it == nil || it.Empty() {
		return ""
	}
	return it.Signature()
}

// Differ is the external slot-diff collaborator. Diff compares the given
// item against what the slot previously granted, applies the resulting
// equip-modifier changes to the player record (slot modifiers replace, never
// merge) and returns the identifiers whose effective value changed. An empty
// item means "no modifiers" and is not an error.
type Differ interface {
	Diff(ctx context.Context, u *user.User, it Item, slot Slot) []registry.Reloadable
}

// Reloader recomputes and applies a stat's or trait's effective value after
// its contributing modifiers change. Side-effecting; this package consumes
// no return value.
type Reloader interface {
	Reload(ctx context.Context, u *user.User, r registry.Reloadable)
}

// Source reads the currently held items of an online player.
type Source interface {
	MainHand(u *user.User) Item
	OffHand(u *user.User) Item
}

// Metadata resolves the modifier payload of an item: its base stat and trait
// modifiers, its skill-xp multipliers and the usage requirement check.
type Metadata interface {
	StatModifiers(it Item) []modifier.Modifier
	TraitModifiers(it Item) []modifier.Modifier
	Multipliers(it Item) []modifier.Multiplier
	MeetsRequirements(u *user.User, it Item) bool
}
