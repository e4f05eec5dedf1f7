package item

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

var (
	strengthStat = registry.Stat{ID: registry.NewID("core", "strength")}
	hpTrait      = registry.Trait{ID: registry.NewID("core", "hp")}
)

func newConsumeHandler(meta *fakeMeta, reloader *fakeReloader) *ConsumeHandler {
	return NewConsumeHandler(meta, reloader, logging.NewDiscard())
}

func TestHandleConsume_GrantsDerivedModifier(t *testing.T) {
	meta := &fakeMeta{
		stats:    []modifier.Modifier{modifier.NewStatModifier("Golden Apple", strengthStat, 10)},
		requires: true,
	}
	reloader := newFakeReloader()
	h := newConsumeHandler(meta, reloader)

	u := user.New(uuid.New())
	h.HandleConsume(context.Background(), u, fakeItem{sig: "apple"}, false)

	m, ok := u.StatModifier("Golden Apple" + ConsumedSuffix)
	require.True(t, ok)
	assert.Equal(t, float64(10), m.Value)
	assert.Equal(t, 1, reloader.count(strengthStat.ID))

	_, ok = u.StatModifier("Golden Apple")
	assert.False(t, ok)
}

func TestHandleConsume_StacksUpToCap(t *testing.T) {
	meta := &fakeMeta{
		stats:    []modifier.Modifier{modifier.NewStatModifier("Golden Apple", strengthStat, 40)},
		requires: true,
	}
	reloader := newFakeReloader()
	h := newConsumeHandler(meta, reloader)

	u := user.New(uuid.New())
	ctx := context.Background()

	h.HandleConsume(ctx, u, fakeItem{sig: "apple"}, false)

	meta.stats = []modifier.Modifier{modifier.NewStatModifier("Golden Apple", strengthStat, 30)}
	h.HandleConsume(ctx, u, fakeItem{sig: "apple"}, false)

	// 40 + 30 truncates to the cap, not 70.
	m, ok := u.StatModifier("Golden Apple" + ConsumedSuffix)
	require.True(t, ok)
	assert.Equal(t, float64(ConsumeValueCap), m.Value)
	assert.Len(t, u.StatModifiers, 1)
}

func TestHandleConsume_SingleValueAboveCapTruncated(t *testing.T) {
	meta := &fakeMeta{
		stats:    []modifier.Modifier{modifier.NewStatModifier("Elixir", strengthStat, 80)},
		requires: true,
	}
	h := newConsumeHandler(meta, newFakeReloader())

	u := user.New(uuid.New())
	h.HandleConsume(context.Background(), u, fakeItem{sig: "elixir"}, false)

	m, ok := u.StatModifier("Elixir" + ConsumedSuffix)
	require.True(t, ok)
	assert.Equal(t, float64(ConsumeValueCap), m.Value)
}

func TestHandleConsume_RequirementsNotMet(t *testing.T) {
	meta := &fakeMeta{
		stats:    []modifier.Modifier{modifier.NewStatModifier("Elixir", strengthStat, 5)},
		requires: false,
	}
	reloader := newFakeReloader()
	h := newConsumeHandler(meta, reloader)

	u := user.New(uuid.New())
	// The equip-sourced entry clears even when nothing is granted.
	u.AddStatModifier(modifier.NewStatModifier("Elixir", strengthStat, 5))

	h.HandleConsume(context.Background(), u, fakeItem{sig: "elixir"}, false)

	assert.Empty(t, u.StatModifiers)
	assert.Equal(t, 1, reloader.count(strengthStat.ID))
}

func TestHandleConsume_Cancelled(t *testing.T) {
	meta := &fakeMeta{
		stats:    []modifier.Modifier{modifier.NewStatModifier("Elixir", strengthStat, 5)},
		requires: true,
	}
	reloader := newFakeReloader()
	h := newConsumeHandler(meta, reloader)

	u := user.New(uuid.New())
	h.HandleConsume(context.Background(), u, fakeItem{sig: "elixir"}, true)

	assert.Empty(t, u.StatModifiers)
	assert.Equal(t, 0, reloader.count(strengthStat.ID))
}

func TestHandleConsume_TraitsAndSharedTargetReloadOnce(t *testing.T) {
	// Two trait modifiers on the same target must trigger a single reload.
	meta := &fakeMeta{
		traits: []modifier.Modifier{
			modifier.NewTraitModifier("Ring", hpTrait, 2),
			modifier.NewTraitModifier("Amulet", hpTrait, 3),
		},
		requires: true,
	}
	reloader := newFakeReloader()
	h := newConsumeHandler(meta, reloader)

	u := user.New(uuid.New())
	h.HandleConsume(context.Background(), u, fakeItem{sig: "jewelry"}, false)

	assert.Len(t, u.TraitModifiers, 2)
	assert.Equal(t, 1, reloader.count(hpTrait.ID))
}

func TestHandleConsume_Multipliers(t *testing.T) {
	mining := registry.NewID("core", "mining")
	meta := &fakeMeta{
		mults:    []modifier.Multiplier{{Name: "XP Brew", Skill: mining, Value: 20}},
		requires: true,
	}
	reloader := newFakeReloader()
	h := newConsumeHandler(meta, reloader)

	u := user.New(uuid.New())
	ctx := context.Background()

	h.HandleConsume(ctx, u, fakeItem{sig: "brew"}, false)
	h.HandleConsume(ctx, u, fakeItem{sig: "brew"}, false)

	m, ok := u.Multiplier("XP Brew" + ConsumedSuffix)
	require.True(t, ok)
	assert.Equal(t, float64(40), m.Value)

	// Multipliers never trigger stat or trait reloads.
	assert.Empty(t, reloader.reloads)
}
