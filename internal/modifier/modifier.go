// Package modifier defines the temporal modifier value object: a named,
// optionally expiring numeric bonus applied to one stat or trait.
package modifier

import (
	"time"

	"github.com/dmitrijs2005/skillkeeper/internal/registry"
)

// Type discriminates the namespace a modifier belongs to. Stat and trait
// modifiers share one physical table but never collide by name.
type Type string

const (
	TypeStat  Type = "stat"
	TypeTrait Type = "trait"
)

// Operation is the combination rule applied when the target computes its
// effective value. The numeric values are stable storage codes.
type Operation byte

const (
	OperationAdd        Operation = 0
	OperationAddPercent Operation = 1
	OperationMultiply   Operation = 2
)

// OperationFromCode maps a storage code back to an Operation. The second
// return value reports whether the code is known.
func OperationFromCode(c byte) (Operation, bool) {
	switch op := Operation(c); op {
	case OperationAdd, OperationAddPercent, OperationMultiply:
		return op, true
	default:
		return OperationAdd, false
	}
}

func (o Operation) Code() byte { return byte(o) }

// Modifier is a named bonus affecting one stat or trait.
//
// Expiry semantics: a zero ExpiresAt means the modifier is permanent. When
// PauseOffline is set, the remaining time-to-live (not the absolute instant)
// is what gets persisted, and the deadline is recomputed relative to "now"
// on the next load, so the clock stops while the player is offline.
type Modifier struct {
	Name          string
	Type          Type
	Target        registry.ID
	Value         float64
	Operation     Operation
	ExpiresAt     time.Time
	PauseOffline  bool
	NonPersistent bool
	Metadata      string
}

func NewStatModifier(name string, stat registry.Stat, value float64) Modifier {
	return Modifier{Name: name, Type: TypeStat, Target: stat.ID, Value: value, Operation: OperationAdd}
}

func NewTraitModifier(name string, trait registry.Trait, value float64) Modifier {
	return Modifier{Name: name, Type: TypeTrait, Target: trait.ID, Value: value, Operation: OperationAdd}
}

// Temporary reports whether the modifier carries an expiry deadline.
func (m Modifier) Temporary() bool {
	return !m.ExpiresAt.IsZero()
}

// MakeTemporary sets the expiry deadline and the offline-pause flag.
func (m *Modifier) MakeTemporary(expiresAt time.Time, pauseOffline bool) {
	m.ExpiresAt = expiresAt
	m.PauseOffline = pauseOffline
}

// Expired reports whether the deadline has passed. Permanent modifiers never
// expire.
func (m Modifier) Expired(now time.Time) bool {
	return m.Temporary() && !now.Before(m.ExpiresAt)
}

// RemainingAt returns the time left until expiry, clamped at zero.
// It returns zero for permanent modifiers.
func (m Modifier) RemainingAt(now time.Time) time.Duration {
	if !m.Temporary() {
		return 0
	}
	rem := m.ExpiresAt.Sub(now)
	if rem < 0 {
		return 0
	}
	return rem
}

// Multiplier is a named skill-experience multiplier. A zero Skill ID applies
// to every skill. Multipliers share the modifier merge and cap rules but are
// not reloadable and carry no expiry.
type Multiplier struct {
	Name  string
	Skill registry.ID
	Value float64
}
