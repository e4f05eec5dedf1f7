package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/skillkeeper/internal/logging"
	"github.com/dmitrijs2005/skillkeeper/internal/scheduler"
	"github.com/dmitrijs2005/skillkeeper/internal/user"
)

// fakeRepo counts saves and fails for selected identities.
type fakeRepo struct {
	mu     sync.Mutex
	saved  map[uuid.UUID]int
	failOn map[uuid.UUID]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: make(map[uuid.UUID]int), failOn: make(map[uuid.UUID]error)}
}

func (f *fakeRepo) Save(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[u.UUID]++
	return f.failOn[u.UUID]
}

func (f *fakeRepo) savedCount(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[id]
}

func (f *fakeRepo) LoadRaw(context.Context, uuid.UUID) (*user.User, error) { return nil, nil }
func (f *fakeRepo) LoadState(_ context.Context, id uuid.UUID) (user.State, error) {
	return user.EmptyState(id), nil
}
func (f *fakeRepo) LoadStates(context.Context, bool, bool) ([]user.State, error) { return nil, nil }
func (f *fakeRepo) ApplyState(context.Context, user.State) error                 { return nil }
func (f *fakeRepo) Delete(context.Context, uuid.UUID) error                      { return nil }
func (f *fakeRepo) LoadAntiAfkLogs(context.Context, uuid.UUID) ([]user.AntiAfkLog, error) {
	return nil, nil
}

type syncScheduler struct{}

func (syncScheduler) Every(ctx context.Context, _ time.Duration, task scheduler.Task) {
	task(ctx)
}

func TestFlush_SavesEveryOnlineUser(t *testing.T) {
	users := user.NewManager()
	repo := newFakeRepo()

	a, b := user.New(uuid.New()), user.New(uuid.New())
	users.Add(a)
	users.Add(b)

	s := NewSaver(users, repo, time.Minute, logging.NewDiscard())
	s.Flush(context.Background())

	assert.Equal(t, 1, repo.savedCount(a.UUID))
	assert.Equal(t, 1, repo.savedCount(b.UUID))
}

func TestFlush_FailureDoesNotStopOthers(t *testing.T) {
	users := user.NewManager()
	repo := newFakeRepo()

	bad, good := user.New(uuid.New()), user.New(uuid.New())
	repo.failOn[bad.UUID] = errors.New("db is down")
	users.Add(bad)
	users.Add(good)

	s := NewSaver(users, repo, time.Minute, logging.NewDiscard())
	s.Flush(context.Background())

	assert.Equal(t, 1, repo.savedCount(good.UUID))
}

func TestFlush_NoOnlineUsers(t *testing.T) {
	s := NewSaver(user.NewManager(), newFakeRepo(), time.Minute, logging.NewDiscard())
	s.Flush(context.Background())
}

func TestStart_SchedulesFlush(t *testing.T) {
	users := user.NewManager()
	repo := newFakeRepo()

	u := user.New(uuid.New())
	users.Add(u)

	s := NewSaver(users, repo, time.Minute, logging.NewDiscard())
	s.Start(context.Background(), syncScheduler{})

	assert.Equal(t, 1, repo.savedCount(u.UUID))
}
