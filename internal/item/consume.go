package item

import (
	"context"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// ConsumedSuffix marks modifiers derived from consuming an item, keeping
// them distinct from the equip-driven modifier of the same target.
const ConsumedSuffix = ".Consumed"

// ConsumeValueCap is the hard ceiling for merged consumed values. Values
// above it are silently truncated.
const ConsumeValueCap = 50

// ConsumeHandler applies the modifier effects of a consumed item: derived
// ".Consumed" modifiers stack by value sum up to the cap, the equip-sourced
// entry of the same target is always cleared, and nothing is granted when
// the player fails the item's usage requirements.
type ConsumeHandler struct {
	meta     Metadata
	reloader Reloader
	log      logging.Logger
}

func NewConsumeHandler(meta Metadata, reloader Reloader, log logging.Logger) *ConsumeHandler {
	return &ConsumeHandler{
		meta:     meta,
		reloader: reloader,
		log:      log.With("component", "consume"),
	}
}

// HandleConsume runs once per consume action, synchronously on the thread
// dispatching the action. Ignored when the action was cancelled upstream.
// Reloads are issued once per distinct affected stat and trait across the
// whole event.
func (h *ConsumeHandler) HandleConsume(ctx context.Context, u *user.User, it Item, cancelled bool) {
	if cancelled {
		return
	}

	meetsRequirements := h.meta.MeetsRequirements(u, it)

	statsToReload := make(map[registry.ID]struct{})
	traitsToReload := make(map[registry.ID]struct{})

	for _, base := range h.meta.StatModifiers(it) {
		consumed := base
		consumed.Name = base.Name + ConsumedSuffix

		// Stack onto a previous consumed entry, then cap.
		if prev, ok := u.StatModifier(consumed.Name); ok {
			consumed.Value = base.Value + prev.Value
			u.RemoveStatModifier(consumed.Name)
		}
		if consumed.Value > ConsumeValueCap {
			consumed.Value = ConsumeValueCap
		}

		// Consuming always clears the equip-sourced entry for this target.
		u.RemoveStatModifier(base.Name)

		if meetsRequirements {
			u.AddStatModifier(consumed)
		}
		statsToReload[base.Target] = struct{}{}
	}

	for _, base := range h.meta.TraitModifiers(it) {
		consumed := base
		consumed.Name = base.Name + ConsumedSuffix

		if prev, ok := u.TraitModifier(consumed.Name); ok {
			consumed.Value = base.Value + prev.Value
			u.RemoveTraitModifier(consumed.Name)
		}
		if consumed.Value > ConsumeValueCap {
			consumed.Value = ConsumeValueCap
		}

		u.RemoveTraitModifier(base.Name)

		if meetsRequirements {
			u.AddTraitModifier(consumed)
		}
		traitsToReload[base.Target] = struct{}{}
	}

	for _, base := range h.meta.Multipliers(it) {
		consumed := modifier.Multiplier{
			Name:  base.Name + ConsumedSuffix,
			Skill: base.Skill,
			Value: base.Value,
		}

		if prev, ok := u.Multiplier(consumed.Name); ok {
			consumed.Value = base.Value + prev.Value
			u.RemoveMultiplier(consumed.Name)
		}
		if consumed.Value > ConsumeValueCap {
			consumed.Value = ConsumeValueCap
		}

		u.RemoveMultiplier(base.Name)

		if meetsRequirements {
			u.AddMultiplier(consumed)
		}
		// Multipliers feed xp gain directly and need no reload.
	}

	for id := range statsToReload {
		h.reloader.Reload(ctx, u, registry.Stat{ID: id})
	}
	for id := range traitsToReload {
		h.reloader.Reload(ctx, u, registry.Trait{ID: id})
	}
}
