package item

import (
	"context"
	"time"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/scheduler"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// TickDuration converts the configured check period, expressed in simulation
// ticks, into wall-clock time.
const TickDuration = 50 * time.Millisecond

// ReconcilerOptions is the configuration surface the reconciler consumes.
type ReconcilerOptions struct {
	// CheckPeriodTicks is the polling period in simulation ticks.
	CheckPeriodTicks int

	// EnableOffHand turns off-hand modifier tracking on.
	EnableOffHand bool
}

// Reconciler polls the held items of every online player, delegates changed
// slots to the external Differ and reloads the identifiers it reports. The
// reconciler only drives cadence and slot selection; it never decides
// modifier values itself.
type Reconciler struct {
	users    *user.Manager
	source   Source
	differ   Differ
	reloader Reloader
	slots    *SlotStore
	opts     ReconcilerOptions
	log      logging.Logger
}

func NewReconciler(users *user.Manager, source Source, differ Differ, reloader Reloader, opts ReconcilerOptions, log logging.Logger) *Reconciler {
	return &Reconciler{
		users:    users,
		source:   source,
		differ:   differ,
		reloader: reloader,
		slots:    NewSlotStore(),
		opts:     opts,
		log:      log.With("component", "reconciler"),
	}
}

// Slots exposes the last-seen store so the hosting process can clear state
// on session end.
func (r *Reconciler) Slots() *SlotStore {
	return r.slots
}

// Start schedules the main-hand and off-hand polling tasks. The off-hand
// task is scheduled regardless and re-checks the toggle each run, so a
// config reload takes effect without rescheduling.
func (r *Reconciler) Start(ctx context.Context, s scheduler.Scheduler) {
	period := time.Duration(r.opts.CheckPeriodTicks) * TickDuration

	s.Every(ctx, period, func(ctx context.Context) {
		for _, u := range r.users.Online() {
			r.checkSlot(ctx, u, r.source.MainHand(u), SlotMainHand, true)
		}
	})

	s.Every(ctx, period, func(ctx context.Context) {
		if !r.opts.EnableOffHand {
			return
		}
		for _, u := range r.users.Online() {
			r.checkSlot(ctx, u, r.source.OffHand(u), SlotOffHand, true)
		}
	})
}

// checkSlot observes the slot content and, when it changed, asks the differ
// which identifiers to recompute. With reload set, each identifier is
// reloaded immediately; otherwise the set is returned for the caller to
// batch.
func (r *Reconciler) checkSlot(ctx context.Context, u *user.User, it Item, slot Slot, reload bool) []registry.Reloadable {
	if !r.slots.Observe(u.UUID, slot, signatureOf(it)) {
		return nil
	}

	changed := r.differ.Diff(ctx, u, it, slot)
	if reload {
		for _, id := range changed {
			r.reloader.Reload(ctx, u, id)
		}
	}
	return changed
}

// HandleSwap reacts to an explicit hand-swap interaction: both hands are
// re-diffed immediately and a single reload pass covers the union of the
// two changed sets, so an identifier touched by both hands is recomputed
// once. No-op when off-hand modifiers are disabled or the interaction was
// cancelled upstream.
func (r *Reconciler) HandleSwap(ctx context.Context, u *user.User, newMainHand, newOffHand Item, cancelled bool) {
	if cancelled || !r.opts.EnableOffHand {
		return
	}

	toReload := make(map[registry.Reloadable]struct{})
	for _, id := range r.checkSlot(ctx, u, newOffHand, SlotOffHand, false) {
		toReload[id] = struct{}{}
	}
	for _, id := range r.checkSlot(ctx, u, newMainHand, SlotMainHand, false) {
		toReload[id] = struct{}{}
	}

	for id := range toReload {
		r.reloader.Reload(ctx, u, id)
	}
}
