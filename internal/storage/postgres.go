package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
	"github.com/dmitrijs2005/skillkeeper/internal/dbx"
	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/registry"
	"github.com/dmitrijs2005/skillkeeper/internal/storage/migrations"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// TablePrefix is shared by all skillkeeper tables so several deployments can
// coexist in one database.
const TablePrefix = "skillkeeper_"

// Key-value data categories. The numeric codes are part of the stored
// format and must not be renumbered.
const (
	dataIDAbility        = 3
	dataIDUnclaimedItems = 4
	dataIDActionBar      = 5
	dataIDJobs           = 6
)

const (
	jobsKey           = "jobs"
	jobsLastSelectKey = "last_select_time"
	cooldownKey       = "cooldown"

	logTypeAntiAfk = "anti_afk"
	logLevelWarn   = 2
)

// Options carry the configuration surface the repository consumes.
type Options struct {
	// SaveBlankProfiles keeps rows for blank records. When false, saving a
	// blank record deletes the player from storage instead.
	SaveBlankProfiles bool
}

// PostgresRepository implements Repository on PostgreSQL via database/sql
// (pgx stdlib driver).
type PostgresRepository struct {
	db       *sql.DB
	registry *registry.Registry
	users    *user.Manager
	opts     Options
	log      logging.Logger
	now      func() time.Time
}

// NewPostgresRepository binds a repository to an open database handle.
func NewPostgresRepository(db *sql.DB, reg *registry.Registry, users *user.Manager, opts Options, log logging.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:       db,
		registry: reg,
		users:    users,
		opts:     opts,
		log:      log.With("component", "storage"),
		now:      time.Now,
	}
}

// Open connects to PostgreSQL, runs the embedded migrations and returns a
// ready repository.
func Open(ctx context.Context, dsn string, reg *registry.Registry, users *user.Manager, opts Options, log logging.Logger) (*PostgresRepository, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	r := NewPostgresRepository(db, reg, users, opts, log)
	if err := r.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return r, nil
}

// Conn exposes the underlying handle for callers that share it, such as
// startup health checks.
func (r *PostgresRepository) Conn() *sql.DB {
	return r.db
}

// RunMigrations applies the embedded goose migrations.
func (r *PostgresRepository) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, r.db, "."); err != nil {
		return err
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// table prefixes a bare table name.
func table(name string) string {
	return TablePrefix + name
}

// userID resolves the numeric user id for a player uuid. Returns
// common.ErrorNotFound when no row exists.
func (r *PostgresRepository) userID(ctx context.Context, q dbx.DBTX, id uuid.UUID) (int64, error) {
	query := `SELECT user_id FROM ` + table("users") + ` WHERE player_uuid=$1`

	var userID int64
	err := q.QueryRowContext(ctx, query, id.String()).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}
