// Package workspace is the collaboration engine: messages across channels
// and DMs, reactions, tag notifications, standups, notification feeds and
// admin removal.
//
// Every public method is one run-to-completion critical section:
//
//	lock → load snapshot → mutate → save snapshot → unlock
//
// Side effects that must not run under the lock (publishing notifications
// to live sockets, arming standup timers) are collected during the
// mutation and dispatched after the save succeeds. A failed operation
// saves nothing and dispatches nothing.
package workspace

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lalith-99/huddle/internal/clock"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/lalith-99/huddle/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Publisher receives every notification after the operation that created
// it has been saved. The realtime hub implements it.
type Publisher interface {
	Publish(userID int, note models.Notification)
}

type Engine struct {
	mu        sync.Mutex
	repo      repository.SnapshotRepository
	clock     clock.Clock
	logger    *zap.Logger
	publisher Publisher
	standups  *scheduler

	passwordCost int
}

type Option func(*Engine)

// WithClock replaces the wall clock. Tests pass clock.Fake to drive
// standup expiry without sleeping.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithPasswordCost sets the bcrypt cost for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(e *Engine) { e.passwordCost = cost }
}

func New(repo repository.SnapshotRepository, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		repo:         repo,
		clock:        clock.Real(),
		logger:       logger,
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.standups = newScheduler(e.clock, e.flushStandup)
	return e
}

// Recover re-arms every standup that was active in the stored snapshot.
// Call it once at startup; standups already past their finish time flush
// immediately.
func (e *Engine) Recover(ctx context.Context) error {
	var timers []standupTimer
	err := e.view(ctx, func(tx *txn) error {
		for _, ch := range tx.ws.Channels {
			if ch.Standup != nil {
				timers = append(timers, standupTimer{channelID: ch.ID, finish: ch.Standup.TimeFinish})
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, t := range timers {
		e.logger.Info("re-arming standup",
			zap.Int("channel_id", t.channelID),
			zap.Int64("time_finish", t.finish),
		)
		e.standups.schedule(time.Unix(t.finish, 0), t.channelID)
	}
	return nil
}

// Close stops pending standup flushes. Standups stay active in the
// snapshot and are re-armed by Recover on the next start.
func (e *Engine) Close() {
	e.standups.close()
}

// update runs fn as a mutating critical section and dispatches its
// side effects once the snapshot is saved.
func (e *Engine) update(ctx context.Context, fn func(tx *txn) error) error {
	tx, err := e.apply(ctx, fn)
	if err != nil {
		return err
	}
	e.dispatch(tx)
	return nil
}

func (e *Engine) apply(ctx context.Context, fn func(tx *txn) error) (*txn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ws, err := e.repo.Load(ctx)
	if err != nil {
		e.logger.Error("failed to load workspace", zap.Error(err))
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	tx := newTxn(ws, e.clock.Now())
	if err := fn(tx); err != nil {
		return nil, err
	}
	if err := e.repo.Save(ctx, ws); err != nil {
		e.logger.Error("failed to save workspace", zap.Error(err))
		return nil, fmt.Errorf("save workspace: %w", err)
	}
	return tx, nil
}

// view runs fn against a fresh snapshot without saving it.
func (e *Engine) view(ctx context.Context, fn func(tx *txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ws, err := e.repo.Load(ctx)
	if err != nil {
		e.logger.Error("failed to load workspace", zap.Error(err))
		return fmt.Errorf("load workspace: %w", err)
	}
	return fn(newTxn(ws, e.clock.Now()))
}

func (e *Engine) dispatch(tx *txn) {
	if e.publisher != nil {
		for _, d := range tx.outbox {
			e.publisher.Publish(d.userID, d.note)
		}
	}
	for _, t := range tx.timers {
		e.standups.schedule(time.Unix(t.finish, 0), t.channelID)
	}
}
