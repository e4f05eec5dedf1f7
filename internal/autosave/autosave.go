// Package autosave periodically flushes online records to storage so a crash
// loses at most one interval of progression.
package autosave

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/scheduler"
	"github.com/dmitrijs2005/skillkeeper/internal/storage"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// Bound on concurrent save transactions per flush, so a full server does not
// exhaust the connection pool.
const maxConcurrentSaves = 4

// Saver flushes every online record on a fixed interval.
type Saver struct {
	users    *user.Manager
	repo     storage.Repository
	interval time.Duration
	log      logging.Logger
}

func NewSaver(users *user.Manager, repo storage.Repository, interval time.Duration, log logging.Logger) *Saver {
	return &Saver{
		users:    users,
		repo:     repo,
		interval: interval,
		log:      log.With("component", "autosave"),
	}
}

// Start schedules the periodic flush. It returns immediately; flushing stops
// when ctx is cancelled.
func (s *Saver) Start(ctx context.Context, sched scheduler.Scheduler) {
	sched.Every(ctx, s.interval, func(ctx context.Context) {
		s.Flush(ctx)
	})
}

// Flush saves every online record. Individual failures are logged and do not
// stop the remaining saves; one player's bad row must not cost everyone else
// their progress.
func (s *Saver) Flush(ctx context.Context) {
	online := s.users.Online()
	if len(online) == 0 {
		return
	}

	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSaves)

	var failed atomic.Int64
	for _, u := range online {
		g.Go(func() error {
			if err := s.repo.Save(ctx, u); err != nil {
				failed.Add(1)
				s.log.Error(ctx, "autosave failed", "uuid", u.UUID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info(ctx, "autosave complete",
		"players", len(online), "failed", failed.Load(), "elapsed", time.Since(start))
}
