// Package storage maps player records onto the relational schema shared
// with the live simulation: load-on-join, save-on-leave, bulk scans for
// offline batch jobs and blank-profile deletion.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// Repository is the persistence contract for player progression state.
//
// All methods block on storage I/O and must be called from a worker
// context, never from the simulation thread.
type Repository interface {
	// LoadRaw builds a full in-memory record for a joining player. A player
	// with no stored rows yields an empty default record; only storage
	// failures are errors.
	LoadRaw(ctx context.Context, id uuid.UUID) (*user.User, error)

	// LoadState returns the lightweight offline view. A missing player
	// yields an empty state with a nil error.
	LoadState(ctx context.Context, id uuid.UUID) (user.State, error)

	// LoadStates scans every stored player in two full passes joined in
	// memory. With ignoreOnline, players owning an active session are
	// skipped entirely. With skipModifiers, modifier rows are not loaded.
	LoadStates(ctx context.Context, ignoreOnline, skipModifiers bool) ([]user.State, error)

	// Save flushes a record. Records flagged ShouldNotSave are ignored;
	// blank profiles are deleted instead when retention is disabled.
	Save(ctx context.Context, u *user.User) error

	// ApplyState writes an offline state back: users, skill_levels and
	// modifier rows only. Auxiliary key-value data and logs are untouched.
	ApplyState(ctx context.Context, s user.State) error

	// Delete removes every row belonging to the player in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	// LoadAntiAfkLogs returns the stored anti-idle warning events for a
	// player.
	LoadAntiAfkLogs(ctx context.Context, id uuid.UUID) ([]user.AntiAfkLog, error)
}
