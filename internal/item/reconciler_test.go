package item

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/scheduler"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// syncScheduler runs every scheduled task exactly once, synchronously.
type syncScheduler struct{}

func (syncScheduler) Every(ctx context.Context, _ time.Duration, task scheduler.Task) {
	task(ctx)
}

func newTestReconciler(differ *fakeDiffer, reloader *fakeReloader, source *fakeSource, offHand bool) (*Reconciler, *user.Manager) {
	users := user.NewManager()
	opts := ReconcilerOptions{CheckPeriodTicks: 20, EnableOffHand: offHand}
	r := NewReconciler(users, source, differ, reloader, opts, logging.NewDiscard())
	return r, users
}

func TestReconciler_CheckSlotReloadsOnChange(t *testing.T) {
	strength := registry.Stat{ID: registry.NewID("core", "strength")}
	differ := &fakeDiffer{changed: map[string][]registry.Reloadable{
		"sword#1": {strength},
	}}
	reloader := newFakeReloader()
	r, _ := newTestReconciler(differ, reloader, &fakeSource{}, true)

	u := user.New(uuid.New())
	ctx := context.Background()

	r.checkSlot(ctx, u, fakeItem{sig: "sword#1"}, SlotMainHand, true)
	assert.Equal(t, 1, reloader.count(strength.ID))

	// Same item again: no diff, no reload.
	r.checkSlot(ctx, u, fakeItem{sig: "sword#1"}, SlotMainHand, true)
	assert.Equal(t, 1, reloader.count(strength.ID))
	assert.Len(t, differ.calls, 1)
}

func TestReconciler_StartPollsOnlineUsers(t *testing.T) {
	strength := registry.Stat{ID: registry.NewID("core", "strength")}
	differ := &fakeDiffer{changed: map[string][]registry.Reloadable{
		"sword#1": {strength},
	}}
	reloader := newFakeReloader()
	source := &fakeSource{main: fakeItem{sig: "sword#1"}, off: fakeItem{}}
	r, users := newTestReconciler(differ, reloader, source, true)

	users.Add(user.New(uuid.New()))

	r.Start(context.Background(), syncScheduler{})

	// Main hand changed and reloaded; empty off hand produced no diff.
	assert.Equal(t, 1, reloader.count(strength.ID))
	assert.Equal(t, []Slot{SlotMainHand}, differ.calls)
}

func TestReconciler_StartSkipsOffHandWhenDisabled(t *testing.T) {
	differ := &fakeDiffer{changed: map[string][]registry.Reloadable{}}
	reloader := newFakeReloader()
	source := &fakeSource{main: fakeItem{}, off: fakeItem{sig: "shield#1"}}
	r, users := newTestReconciler(differ, reloader, source, false)

	users.Add(user.New(uuid.New()))

	r.Start(context.Background(), syncScheduler{})

	assert.Empty(t, differ.calls)
}

func TestReconciler_HandleSwapReloadsUnionOnce(t *testing.T) {
	// Both hands report the same changed stat; it must reload exactly once.
	strength := registry.Stat{ID: registry.NewID("core", "strength")}
	hp := registry.Trait{ID: registry.NewID("core", "hp")}
	differ := &fakeDiffer{changed: map[string][]registry.Reloadable{
		"sword#1":  {strength, hp},
		"shield#1": {strength},
	}}
	reloader := newFakeReloader()
	r, _ := newTestReconciler(differ, reloader, &fakeSource{}, true)

	u := user.New(uuid.New())
	r.HandleSwap(context.Background(), u, fakeItem{sig: "sword#1"}, fakeItem{sig: "shield#1"}, false)

	assert.Equal(t, 1, reloader.count(strength.ID))
	assert.Equal(t, 1, reloader.count(hp.ID))
	assert.Len(t, differ.calls, 2)
}

func TestReconciler_HandleSwapCancelled(t *testing.T) {
	differ := &fakeDiffer{changed: map[string][]registry.Reloadable{}}
	reloader := newFakeReloader()
	r, _ := newTestReconciler(differ, reloader, &fakeSource{}, true)

	u := user.New(uuid.New())
	r.HandleSwap(context.Background(), u, fakeItem{sig: "a"}, fakeItem{sig: "b"}, true)

	assert.Empty(t, differ.calls)
	// The cancelled swap must not poison the slot store either.
	assert.True(t, r.Slots().Observe(u.UUID, SlotMainHand, "a"))
}

func TestReconciler_HandleSwapOffHandDisabled(t *testing.T) {
	differ := &fakeDiffer{changed: map[string][]registry.Reloadable{}}
	reloader := newFakeReloader()
	r, _ := newTestReconciler(differ, reloader, &fakeSource{}, false)

	u := user.New(uuid.New())
	r.HandleSwap(context.Background(), u, fakeItem{sig: "a"}, fakeItem{sig: "b"}, false)

	assert.Empty(t, differ.calls)
}
