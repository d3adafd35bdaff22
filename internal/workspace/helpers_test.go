package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lalith-99/huddle/internal/clock"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/lalith-99/huddle/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var epoch = time.Unix(1_800_000_000, 0)

type recordingPublisher struct {
	mu    sync.Mutex
	notes map[int][]models.Notification
}

func (p *recordingPublisher) Publish(userID int, note models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notes == nil {
		p.notes = make(map[int][]models.Notification)
	}
	p.notes[userID] = append(p.notes[userID], note)
}

func (p *recordingPublisher) count(userID int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.notes[userID])
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	engine *Engine
	clock  *clock.FakeClock
	repo   *memory.SnapshotStore
	pub    *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		clock: clock.Fake(epoch),
		repo:  memory.NewSnapshotStore(),
		pub:   &recordingPublisher{},
	}
	f.engine = New(f.repo, zap.NewNop(),
		WithClock(f.clock),
		WithPublisher(f.pub),
		WithPasswordCost(bcrypt.MinCost),
	)
	t.Cleanup(f.engine.Close)
	return f
}

// register creates a user with a unique email and returns the ID.
func (f *fixture) register(first, last string) int {
	f.t.Helper()
	id, err := f.engine.Register(f.ctx, RegisterParams{
		Email:     fmt.Sprintf("%s.%s@example.com", first, last),
		Password:  "password123",
		NameFirst: first,
		NameLast:  last,
	})
	require.NoError(f.t, err)
	return id
}

func (f *fixture) handle(uid int) string {
	f.t.Helper()
	p, err := f.engine.Profile(f.ctx, uid, uid)
	require.NoError(f.t, err)
	return p.HandleStr
}

func (f *fixture) channel(owner int, name string, members ...int) int {
	f.t.Helper()
	id, err := f.engine.CreateChannel(f.ctx, owner, name, true)
	require.NoError(f.t, err)
	for _, m := range members {
		require.NoError(f.t, f.engine.JoinChannel(f.ctx, m, id))
	}
	return id
}

func (f *fixture) send(uid int, ref models.ContainerRef, body string) int {
	f.t.Helper()
	id, err := f.engine.SendMessage(f.ctx, uid, ref, body)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) feed(uid int) []models.Notification {
	f.t.Helper()
	notes, err := f.engine.Notifications(f.ctx, uid)
	require.NoError(f.t, err)
	return notes
}

func requireKind(t *testing.T, err error, kind *Error) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errors.Is(err, kind), "got %v, want %v", err, kind.Kind)
}
