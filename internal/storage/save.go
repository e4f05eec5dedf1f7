package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// Save flushes a record as an ordered sequence of idempotent upserts on one
// connection. The key_values and modifiers tables are rewritten wholesale
// (delete then insert): both sets are small, fully owned by this save, and
// change completely between saves, so a full rewrite beats retaining stale
// rows from removed modifiers.
func (r *PostgresRepository) Save(ctx context.Context, u *user.User) error {
	if u.ShouldNotSave {
		return nil
	}

	if !r.opts.SaveBlankProfiles && u.Blank() {
		if err := r.deleteUserTx(ctx, u.UUID); err != nil {
			r.log.Error(ctx, "failed to delete blank profile", "uuid", u.UUID, "error", err)
			return err
		}
		return nil
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("db conn error: %w", err)
	}
	defer conn.Close()

	if err := r.saveUsersTable(ctx, conn, u); err != nil {
		return err
	}

	userID, err := r.userID(ctx, conn, u.UUID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// The upsert above must have produced a row; its absence is a
			// data-integrity violation.
			return fmt.Errorf("%w: %s", common.ErrUserIDNotResolved, u.UUID)
		}
		return err
	}

	if err := r.saveSkillLevelsTable(ctx, conn, u, userID); err != nil {
		return err
	}
	if err := r.saveKeyValuesTable(ctx, conn, u, userID); err != nil {
		return err
	}
	if err := r.saveModifiersTable(ctx, conn, u, userID); err != nil {
		return err
	}

	// Log append failures roll back on their own and never abort the save.
	r.saveAntiAfkLogs(ctx, u)

	return nil
}

// ApplyState writes an offline state back to storage: the users row, the
// skill_levels rows and a full rewrite of the modifier rows. The auxiliary
// key-value data and the log tables belong to live sessions and are left
// alone. An insert leaves the locale NULL; an update keeps the stored one.
func (r *PostgresRepository) ApplyState(ctx context.Context, s user.State) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("db conn error: %w", err)
	}
	defer conn.Close()

	query := `INSERT INTO ` + table("users") + ` (player_uuid, mana) VALUES ($1, $2)
		ON CONFLICT (player_uuid) DO UPDATE SET mana=EXCLUDED.mana`
	if _, err := conn.ExecContext(ctx, query, s.UUID.String(), s.Mana); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	userID, err := r.userID(ctx, conn, s.UUID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: %s", common.ErrUserIDNotResolved, s.UUID)
		}
		return err
	}

	if err := r.upsertSkillLevels(ctx, conn, userID, s.SkillLevels, s.SkillXp); err != nil {
		return err
	}

	if err := r.deleteModifiers(ctx, conn, userID); err != nil {
		return err
	}
	rows := r.modifierRows(s.StatModifiers)
	rows = append(rows, r.modifierRows(s.TraitModifiers)...)
	return r.insertModifierRows(ctx, conn, userID, rows)
}

func (r *PostgresRepository) saveUsersTable(ctx context.Context, q dbx.DBTX, u *user.User) error {
	query := `INSERT INTO ` + table("users") + ` (player_uuid, locale, mana) VALUES ($1, $2, $3)
		ON CONFLICT (player_uuid) DO UPDATE SET locale=EXCLUDED.locale, mana=EXCLUDED.mana`

	var locale sql.NullString
	if u.Locale != "" {
		locale = sql.NullString{String: u.Locale, Valid: true}
	}

	if _, err := q.ExecContext(ctx, query, u.UUID.String(), locale, u.Mana); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) saveSkillLevelsTable(ctx context.Context, q dbx.DBTX, u *user.User, userID int64) error {
	return r.upsertSkillLevels(ctx, q, userID, u.SkillLevels, u.SkillXp)
}

func (r *PostgresRepository) upsertSkillLevels(ctx context.Context, q dbx.DBTX, userID int64, levels map[registry.ID]int, xp map[registry.ID]float64) error {
	query := `INSERT INTO ` + table("skill_levels") + ` (user_id, skill_name, skill_level, skill_xp) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, skill_name) DO UPDATE SET skill_level=EXCLUDED.skill_level, skill_xp=EXCLUDED.skill_xp`

	for skillID, level := range levels {
		if _, err := q.ExecContext(ctx, query, userID, skillID.String(), level, xp[skillID]); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

// keyValueRow is one generic auxiliary tuple. categoryID may be empty for
// categories without a secondary grouping.
type keyValueRow struct {
	dataID     int
	categoryID string
	key        string
	value      string
}

func (r *PostgresRepository) saveKeyValuesTable(ctx context.Context, q dbx.DBTX, u *user.User, userID int64) error {
	if err := r.deleteKeyValues(ctx, q, userID); err != nil {
		return err
	}

	rows := abilityDataRows(u)
	rows = append(rows, unclaimedItemRows(u)...)
	rows = append(rows, actionBarRows(u)...)
	rows = append(rows, jobsRows(u)...)

	return r.insertKeyValueRows(ctx, q, userID, rows)
}

func (r *PostgresRepository) insertKeyValueRows(ctx context.Context, q dbx.DBTX, userID int64, rows []keyValueRow) error {
	query := `INSERT INTO ` + table("key_values") + ` (user_id, data_id, category_id, key_name, value) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, data_id, category_id, key_name) DO UPDATE SET value=EXCLUDED.value`

	for _, row := range rows {
		if _, err := q.ExecContext(ctx, query, userID, row.dataID, row.categoryID, row.key, row.value); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func abilityDataRows(u *user.User) []keyValueRow {
	var rows []keyValueRow
	for abilityID, data := range u.AbilityData {
		for key, value := range data {
			rows = append(rows, keyValueRow{dataID: dataIDAbility, categoryID: abilityID.String(), key: key, value: value})
		}
	}
	for abilityID, data := range u.ManaAbilityData {
		if data.Cooldown <= 0 {
			continue
		}
		rows = append(rows, keyValueRow{dataID: dataIDAbility, categoryID: abilityID.String(), key: cooldownKey, value: strconv.Itoa(data.Cooldown)})
	}
	return rows
}

func unclaimedItemRows(u *user.User) []keyValueRow {
	var rows []keyValueRow
	for _, item := range u.UnclaimedItems {
		rows = append(rows, keyValueRow{dataID: dataIDUnclaimedItems, key: item.Key, value: strconv.Itoa(item.Amount)})
	}
	return rows
}

// actionBarRows writes one row per disabled overlay. The default
// all-enabled state is not persisted, keeping blank profiles truly blank.
func actionBarRows(u *user.User) []keyValueRow {
	var rows []keyValueRow
	for _, t := range user.ActionBarTypes {
		if u.ActionBarEnabled(t) {
			continue
		}
		rows = append(rows, keyValueRow{dataID: dataIDActionBar, key: string(t), value: "false"})
	}
	return rows
}

// jobsRows writes the assigned job list and the last selection timestamp,
// but only when at least one job is assigned.
func jobsRows(u *user.User) []keyValueRow {
	if len(u.Jobs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(u.Jobs))
	for jobID := range u.Jobs {
		ids = append(ids, jobID.String())
	}
	sort.Strings(ids)

	return []keyValueRow{
		{dataID: dataIDJobs, key: jobsKey, value: strings.Join(ids, ",")},
		{dataID: dataIDJobs, key: jobsLastSelectKey, value: strconv.FormatInt(u.LastJobSelect.UnixMilli(), 10)},
	}
}

// modifierRow is the flattened storage form of one modifier. Exactly one of
// expirationMs/remainingMs may be nonzero: a remaining duration implies the
// offline-pause semantics and replaces the absolute deadline.
type modifierRow struct {
	modifierType string
	typeID       string
	name         string
	value        float64
	operation    byte
	expirationMs int64
	remainingMs  int64
	metadata     sql.NullString
}

func (r *PostgresRepository) saveModifiersTable(ctx context.Context, q dbx.DBTX, u *user.User, userID int64) error {
	if err := r.deleteModifiers(ctx, q, userID); err != nil {
		return err
	}

	rows := r.modifierRows(u.StatModifiers)
	rows = append(rows, r.modifierRows(u.TraitModifiers)...)

	return r.insertModifierRows(ctx, q, userID, rows)
}

func (r *PostgresRepository) insertModifierRows(ctx context.Context, q dbx.DBTX, userID int64, rows []modifierRow) error {
	query := `INSERT INTO ` + table("modifiers") + `
		(user_id, modifier_type, type_id, modifier_name, modifier_value, modifier_operation, expiration_time, remaining_duration, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, modifier_type, modifier_name) DO UPDATE SET
			modifier_value=EXCLUDED.modifier_value,
			expiration_time=EXCLUDED.expiration_time,
			remaining_duration=EXCLUDED.remaining_duration,
			metadata=EXCLUDED.metadata`

	for _, row := range rows {
		if _, err := q.ExecContext(ctx, query,
			userID, row.modifierType, row.typeID, row.name, row.value,
			int16(row.operation), row.expirationMs, row.remainingMs, row.metadata); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) modifierRows(modifiers map[string]modifier.Modifier) []modifierRow {
	var rows []modifierRow
	now := r.now()

	for _, m := range modifiers {
		if m.NonPersistent {
			continue
		}

		row := modifierRow{
			modifierType: string(m.Type),
			typeID:       m.Target.String(),
			name:         m.Name,
			value:        m.Value,
			operation:    m.Operation.Code(),
		}
		if m.Metadata != "" {
			row.metadata = sql.NullString{String: m.Metadata, Valid: true}
		}

		if m.Temporary() {
			if m.PauseOffline {
				row.remainingMs = m.RemainingAt(now).Milliseconds()
			} else {
				row.expirationMs = m.ExpiresAt.UnixMilli()
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// saveAntiAfkLogs appends the session's accumulated warnings in its own
// transaction with insert-ignore semantics, so duplicates are harmless and
// a failure here rolls back without touching the rest of the save.
func (r *PostgresRepository) saveAntiAfkLogs(ctx context.Context, u *user.User) {
	if len(u.AntiAfkLogs) == 0 {
		return
	}

	query := `INSERT INTO ` + table("logs") + ` (log_type, log_time, log_level, log_message, player_uuid, player_coords, world_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING`

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, entry := range u.AntiAfkLogs {
			if _, err := tx.ExecContext(ctx, query,
				logTypeAntiAfk, entry.Time, logLevelWarn, entry.Message,
				u.UUID.String(), entry.Coords.String(), entry.World); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.Error(ctx, "failed to append anti-afk logs", "uuid", u.UUID, "error", err)
	}
}

func (r *PostgresRepository) deleteKeyValues(ctx context.Context, q dbx.DBTX, userID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM `+table("key_values")+` WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) deleteModifiers(ctx context.Context, q dbx.DBTX, userID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM `+table("modifiers")+` WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes every row belonging to the player inside one transaction,
// committed only on success. A player with no rows is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.deleteUserTx(ctx, id)
}

func (r *PostgresRepository) deleteUserTx(ctx context.Context, id uuid.UUID) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := r.userID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}

		for _, name := range []string{"key_values", "modifiers", "skill_levels", "users"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table(name)+` WHERE user_id=$1`, userID); err != nil {
				return fmt.Errorf("db error: %w", err)
			}
		}
		return nil
	})
}
