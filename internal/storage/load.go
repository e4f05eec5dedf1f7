package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/modifier"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// LoadRaw builds the full record for a joining player on a dedicated
// connection. Missing rows produce an empty default record; the only hard
// failure is being unable to acquire or use the connection.
func (r *PostgresRepository) LoadRaw(ctx context.Context, id uuid.UUID) (*user.User, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("db conn error: %w", err)
	}
	defer conn.Close()

	u := user.New(id)
	if err := r.loadUser(ctx, conn, u); err != nil {
		return nil, err
	}
	return u, nil
}

// loadUser fills an empty record from the row set belonging to its uuid.
func (r *PostgresRepository) loadUser(ctx context.Context, q dbx.DBTX, u *user.User) error {
	query := `SELECT user_id, locale, mana FROM ` + table("users") + ` WHERE player_uuid=$1`

	var userID int64
	var locale sql.NullString
	err := q.QueryRowContext(ctx, query, u.UUID.String()).Scan(&userID, &locale, &u.Mana)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// New player, nothing stored yet.
			return nil
		}
		return fmt.Errorf("db error: %w", err)
	}
	if locale.Valid {
		u.Locale = locale.String
	}

	levels, xp, err := r.loadSkillLevels(ctx, q, u.UUID, userID)
	if err != nil {
		return err
	}
	u.SkillLevels = levels
	u.SkillXp = xp

	if u.StatModifiers, err = r.loadModifiers(ctx, q, u.UUID, userID, modifier.TypeStat); err != nil {
		return err
	}
	if u.TraitModifiers, err = r.loadModifiers(ctx, q, u.UUID, userID, modifier.TypeTrait); err != nil {
		return err
	}

	return r.loadKeyValues(ctx, q, u, userID)
}

// loadSkillLevels reads one row per (user, skill). Unknown skill identifiers
// are skipped with a warning, not fatal to the whole load.
func (r *PostgresRepository) loadSkillLevels(ctx context.Context, q dbx.DBTX, id uuid.UUID, userID int64) (map[registry.ID]int, map[registry.ID]float64, error) {
	levels := make(map[registry.ID]int)
	xp := make(map[registry.ID]float64)

	query := `SELECT skill_name, skill_level, skill_xp FROM ` + table("skill_levels") + ` WHERE user_id=$1`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var skillName string
		var level int
		var skillXp float64
		if err := rows.Scan(&skillName, &level, &skillXp); err != nil {
			return nil, nil, err
		}

		skillID, err := registry.ParseID(skillName)
		if err != nil {
			r.log.Warn(ctx, "skipping malformed skill id", "uuid", id, "skill", skillName)
			continue
		}
		skill, ok := r.registry.Skill(skillID)
		if !ok {
			r.log.Warn(ctx, "skipping level for unregistered skill", "uuid", id, "skill", skillName)
			continue
		}

		levels[skill.ID] = level
		xp[skill.ID] = skillXp
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return levels, xp, nil
}

// loadModifiers reads the modifier rows of one namespace. Stat and trait
// rows share a table, discriminated by modifier_type. Rows whose target no
// longer resolves to a registered stat/trait are skipped with a warning.
func (r *PostgresRepository) loadModifiers(ctx context.Context, q dbx.DBTX, id uuid.UUID, userID int64, mtype modifier.Type) (map[string]modifier.Modifier, error) {
	modifiers := make(map[string]modifier.Modifier)

	query := `SELECT type_id, modifier_name, modifier_value, modifier_operation, expiration_time, remaining_duration, metadata FROM ` +
		table("modifiers") + ` WHERE user_id=$1 AND modifier_type=$2`
	rows, err := q.QueryContext(ctx, query, userID, string(mtype))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typeID sql.NullString
		var name string
		var value float64
		var operation int16
		var expirationMs, remainingMs int64
		var metadata sql.NullString
		if err := rows.Scan(&typeID, &name, &value, &operation, &expirationMs, &remainingMs, &metadata); err != nil {
			return nil, err
		}
		if !typeID.Valid {
			continue
		}

		target, err := registry.ParseID(typeID.String)
		if err != nil {
			r.log.Warn(ctx, "skipping modifier with malformed target", "uuid", id, "target", typeID.String)
			continue
		}
		if !r.targetRegistered(mtype, target) {
			r.log.Warn(ctx, "skipping modifier for unregistered target", "uuid", id, "type", string(mtype), "target", typeID.String)
			continue
		}

		op, known := modifier.OperationFromCode(byte(operation))
		if !known {
			r.log.Warn(ctx, "unknown modifier operation, assuming add", "uuid", id, "name", name, "operation", operation)
		}

		m := modifier.Modifier{
			Name:      name,
			Type:      mtype,
			Target:    target,
			Value:     value,
			Operation: op,
		}
		if metadata.Valid {
			m.Metadata = metadata.String
		}
		r.applyTemporal(&m, expirationMs, remainingMs)

		modifiers[name] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return modifiers, nil
}

func (r *PostgresRepository) targetRegistered(mtype modifier.Type, target registry.ID) bool {
	switch mtype {
	case modifier.TypeStat:
		_, ok := r.registry.Stat(target)
		return ok
	case modifier.TypeTrait:
		_, ok := r.registry.Trait(target)
		return ok
	default:
		return false
	}
}

// applyTemporal reconstructs expiry from the stored pair. A nonzero
// remaining duration means the clock was stopped while the player was
// offline: the deadline restarts at now + remaining. Otherwise the stored
// absolute expiry applies, zero meaning permanent.
func (r *PostgresRepository) applyTemporal(m *modifier.Modifier, expirationMs, remainingMs int64) {
	if remainingMs != 0 {
		m.MakeTemporary(r.now().Add(time.Duration(remainingMs)*time.Millisecond), true)
		return
	}
	if expirationMs != 0 {
		m.MakeTemporary(time.UnixMilli(expirationMs), false)
	}
}

// loadKeyValues routes the generic key-value rows back into the record's
// auxiliary fields by data category.
func (r *PostgresRepository) loadKeyValues(ctx context.Context, q dbx.DBTX, u *user.User, userID int64) error {
	query := `SELECT data_id, category_id, key_name, value FROM ` + table("key_values") + ` WHERE user_id=$1`
	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dataID int
		var categoryID, key, value string
		if err := rows.Scan(&dataID, &categoryID, &key, &value); err != nil {
			return err
		}

		switch dataID {
		case dataIDAbility:
			r.loadAbilityRow(ctx, u, categoryID, key, value)
		case dataIDUnclaimedItems:
			amount, err := strconv.Atoi(value)
			if err != nil {
				r.log.Warn(ctx, "skipping malformed unclaimed item row", "uuid", u.UUID, "key", key)
				continue
			}
			u.UnclaimedItems = append(u.UnclaimedItems, user.UnclaimedItem{Key: key, Amount: amount})
		case dataIDActionBar:
			u.SetActionBarEnabled(user.ActionBarType(key), value == "true")
		case dataIDJobs:
			r.loadJobsRow(ctx, u, key, value)
		default:
			r.log.Warn(ctx, "skipping key-value row with unknown category", "uuid", u.UUID, "data_id", dataID)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) loadAbilityRow(ctx context.Context, u *user.User, categoryID, key, value string) {
	abilityID, err := registry.ParseID(categoryID)
	if err != nil {
		r.log.Warn(ctx, "skipping ability row with malformed id", "uuid", u.UUID, "ability", categoryID)
		return
	}

	// Mana ability cooldowns share the ability category; everything else is
	// opaque per-ability data.
	if key == cooldownKey {
		cooldown, err := strconv.Atoi(value)
		if err == nil && cooldown > 0 {
			u.ManaAbilityData[abilityID] = user.ManaAbilityData{Cooldown: cooldown}
			return
		}
	}

	data, ok := u.AbilityData[abilityID]
	if !ok {
		data = make(user.AbilityData)
		u.AbilityData[abilityID] = data
	}
	data[key] = value
}

func (r *PostgresRepository) loadJobsRow(ctx context.Context, u *user.User, key, value string) {
	switch key {
	case jobsKey:
		for _, raw := range strings.Split(value, ",") {
			if raw == "" {
				continue
			}
			jobID, err := registry.ParseID(raw)
			if err != nil {
				r.log.Warn(ctx, "skipping malformed job id", "uuid", u.UUID, "job", raw)
				continue
			}
			u.Jobs[jobID] = struct{}{}
		}
	case jobsLastSelectKey:
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			r.log.Warn(ctx, "skipping malformed job selection time", "uuid", u.UUID)
			return
		}
		u.LastJobSelect = time.UnixMilli(ms)
	}
}

// LoadState returns the lightweight offline view of one player. Absence of
// the player is a valid state, not a failure.
func (r *PostgresRepository) LoadState(ctx context.Context, id uuid.UUID) (user.State, error) {
	query := `SELECT user_id, mana FROM ` + table("users") + ` WHERE player_uuid=$1`

	var userID int64
	var mana float64
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&userID, &mana)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.EmptyState(id), nil
		}
		return user.State{}, fmt.Errorf("db error: %w", err)
	}

	levels, xp, err := r.loadSkillLevels(ctx, r.db, id, userID)
	if err != nil {
		return user.State{}, err
	}
	statModifiers, err := r.loadModifiers(ctx, r.db, id, userID, modifier.TypeStat)
	if err != nil {
		return user.State{}, err
	}
	traitModifiers, err := r.loadModifiers(ctx, r.db, id, userID, modifier.TypeTrait)
	if err != nil {
		return user.State{}, err
	}

	return user.State{
		UUID:           id,
		SkillLevels:    levels,
		SkillXp:        xp,
		StatModifiers:  statModifiers,
		TraitModifiers: traitModifiers,
		Mana:           mana,
	}, nil
}

// LoadStates loads every stored player with two full scans joined in memory
// by numeric user id, avoiding one query per user. With ignoreOnline, any
// uuid owning an active session is skipped entirely: the live record always
// wins over a stale snapshot.
func (r *PostgresRepository) LoadStates(ctx context.Context, ignoreOnline, skipModifiers bool) ([]user.State, error) {
	loadedLevels := make(map[int64]map[registry.ID]int)
	loadedXp := make(map[int64]map[registry.ID]float64)

	levelsQuery := `SELECT user_id, skill_name, skill_level, skill_xp FROM ` + table("skill_levels")
	rows, err := r.db.QueryContext(ctx, levelsQuery)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var skillName string
		var level int
		var xp float64
		if err := rows.Scan(&userID, &skillName, &level, &xp); err != nil {
			return nil, err
		}

		skillID, err := registry.ParseID(skillName)
		if err != nil {
			continue
		}
		skill, ok := r.registry.Skill(skillID)
		if !ok {
			continue
		}

		if loadedLevels[userID] == nil {
			loadedLevels[userID] = make(map[registry.ID]int)
			loadedXp[userID] = make(map[registry.ID]float64)
		}
		loadedLevels[userID][skill.ID] = level
		loadedXp[userID][skill.ID] = xp
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var states []user.State

	usersQuery := `SELECT user_id, player_uuid, mana FROM ` + table("users")
	userRows, err := r.db.QueryContext(ctx, usersQuery)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer userRows.Close()

	type scannedUser struct {
		userID int64
		id     uuid.UUID
		mana   float64
	}
	var scanned []scannedUser

	for userRows.Next() {
		var userID int64
		var rawUUID string
		var mana float64
		if err := userRows.Scan(&userID, &rawUUID, &mana); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(rawUUID)
		if err != nil {
			r.log.Warn(ctx, "skipping user row with malformed uuid", "raw", rawUUID)
			continue
		}
		if ignoreOnline && r.users != nil && r.users.Has(id) {
			continue
		}
		scanned = append(scanned, scannedUser{userID: userID, id: id, mana: mana})
	}
	if err := userRows.Err(); err != nil {
		return nil, err
	}

	for _, su := range scanned {
		statModifiers := make(map[string]modifier.Modifier)
		traitModifiers := make(map[string]modifier.Modifier)
		if !skipModifiers {
			if statModifiers, err = r.loadModifiers(ctx, r.db, su.id, su.userID, modifier.TypeStat); err != nil {
				return nil, err
			}
			if traitModifiers, err = r.loadModifiers(ctx, r.db, su.id, su.userID, modifier.TypeTrait); err != nil {
				return nil, err
			}
		}

		levels := loadedLevels[su.userID]
		if levels == nil {
			levels = make(map[registry.ID]int)
		}
		xp := loadedXp[su.userID]
		if xp == nil {
			xp = make(map[registry.ID]float64)
		}

		states = append(states, user.State{
			UUID:           su.id,
			SkillLevels:    levels,
			SkillXp:        xp,
			StatModifiers:  statModifiers,
			TraitModifiers: traitModifiers,
			Mana:           su.mana,
		})
	}

	return states, nil
}

// LoadAntiAfkLogs returns the stored anti-idle warnings for a player.
// Failures yield an empty slice and a warning: log history is never worth
// failing a caller over.
func (r *PostgresRepository) LoadAntiAfkLogs(ctx context.Context, id uuid.UUID) ([]user.AntiAfkLog, error) {
	query := `SELECT log_time, log_message, player_coords, world_name FROM ` + table("logs") + ` WHERE player_uuid=$1 AND log_type=$2`

	rows, err := r.db.QueryContext(ctx, query, id.String(), logTypeAntiAfk)
	if err != nil {
		r.log.Warn(ctx, "failed to load anti-afk logs", "uuid", id, "error", err)
		return []user.AntiAfkLog{}, nil
	}
	defer rows.Close()

	var logs []user.AntiAfkLog
	for rows.Next() {
		var logTime time.Time
		var message, coords sql.NullString
		var world sql.NullString
		if err := rows.Scan(&logTime, &message, &coords, &world); err != nil {
			return nil, err
		}
		logs = append(logs, user.AntiAfkLog{
			Time:    logTime,
			Message: message.String,
			Coords:  user.ParsePosition(coords.String),
			World:   world.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
