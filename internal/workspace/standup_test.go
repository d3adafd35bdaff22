package workspace

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/lalith-99/huddle/internal/clock"
	"github.com/lalith-99/huddle/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStandupFlushesOnce(t *testing.T) {
	f := newFixture(t)
	a := f.register("Hayden", "Smith")
	b := f.register("Jake", "Renzella")
	chID := f.channel(a, "general", b)
	ref := models.ChannelRef(chID)

	finish, err := f.engine.StartStandup(f.ctx, a, chID, 5)
	require.NoError(t, err)
	assert.Equal(t, epoch.Unix()+5, finish)

	status, err := f.engine.StandupActive(f.ctx, b, chID)
	require.NoError(t, err)
	require.True(t, status.IsActive)
	assert.Equal(t, finish, *status.TimeFinish)

	f.clock.Advance(2 * time.Second)
	require.NoError(t, f.engine.SendStandup(f.ctx, a, chID, "hi"))
	require.NoError(t, f.engine.SendStandup(f.ctx, b, chID, "hi"))

	// Buffered sends create no message.
	page, err := f.engine.Messages(f.ctx, a, ref, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	f.clock.Advance(3 * time.Second)

	page, err = f.engine.Messages(f.ctx, a, ref, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "haydensmith: hi\njakerenzella: hi\n", page.Messages[0].Message)
	assert.Equal(t, a, page.Messages[0].UID)
	assert.Equal(t, finish, page.Messages[0].TimeSent)

	status, err = f.engine.StandupActive(f.ctx, a, chID)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
	assert.Nil(t, status.TimeFinish)
	assert.Zero(t, f.engine.standups.pending())

	// Nothing more fires later.
	f.clock.Advance(time.Hour)
	page, err = f.engine.Messages(f.ctx, a, ref, 0)
	require.NoError(t, err)
	assert.Len(t, page.Messages, 1)
}

func TestStandupEmptyBufferPostsNothing(t *testing.T) {
	f := newFixture(t)
	a := f.register("Hayden", "Smith")
	chID := f.channel(a, "general")

	_, err := f.engine.StartStandup(f.ctx, a, chID, 1)
	require.NoError(t, err)
	f.clock.Advance(time.Second)

	page, err := f.engine.Messages(f.ctx, a, models.ChannelRef(chID), 0)
	require.NoError(t, err)
	assert.Empty(t, page.Messages)

	// The channel is free for another standup.
	_, err = f.engine.StartStandup(f.ctx, a, chID, 1)
	require.NoError(t, err)
}

func TestStandupZeroLengthFlushesImmediately(t *testing.T) {
	f := newFixture(t)
	a := f.register("Hayden", "Smith")
	chID := f.channel(a, "general")

	_, err := f.engine.StartStandup(f.ctx, a, chID, 0)
	require.NoError(t, err)

	status, err := f.engine.StandupActive(f.ctx, a, chID)
	require.NoError(t, err)
	assert.False(t, status.IsActive)
}

func TestStandupErrors(t *testing.T) {
	f := newFixture(t)
	a := f.register("Hayden", "Smith")
	outsider := f.register("Jake", "Renzella")
	chID := f.channel(a, "general")

	_, err := f.engine.StartStandup(f.ctx, a, chID, -1)
	requireKind(t, err, ErrInvalidArgument)
	_, err = f.engine.StartStandup(f.ctx, a, chID, math.MaxInt)
	requireKind(t, err, ErrInvalidArgument)
	_, err = f.engine.StartStandup(f.ctx, a, chID, MaxStandupLength+1)
	requireKind(t, err, ErrInvalidArgument)
	_, err = f.engine.StartStandup(f.ctx, a, 404, 5)
	requireKind(t, err, ErrNotFound)
	_, err = f.engine.StartStandup(f.ctx, outsider, chID, 5)
	requireKind(t, err, ErrForbidden)
	requireKind(t, f.engine.SendStandup(f.ctx, a, chID, "early"), ErrInvalidArgument)

	_, err = f.engine.StartStandup(f.ctx, a, chID, 5)
	require.NoError(t, err)
	_, err = f.engine.StartStandup(f.ctx, a, chID, 5)
	requireKind(t, err, ErrConflict)

	requireKind(t, f.engine.SendStandup(f.ctx, a, chID, ""), ErrInvalidArgument)
	requireKind(t, f.engine.SendStandup(f.ctx, outsider, chID, "hi"), ErrForbidden)
	requireKind(t, f.engine.LeaveChannel(f.ctx, a, chID), ErrConflict)
}

func TestStandupTextIsNotScannedForTags(t *testing.T) {
	f := newFixture(t)
	a := f.register("Hayden", "Smith")
	b := f.register("Jake", "Renzella")
	chID := f.channel(a, "general", b)

	_, err := f.engine.StartStandup(f.ctx, a, chID, 5)
	require.NoError(t, err)
	require.NoError(t, f.engine.SendStandup(f.ctx, a, chID, "ping @jakerenzella"))
	f.clock.Advance(5 * time.Second)

	assert.Empty(t, f.feed(b))
}

func TestStandupsInSeparateChannels(t *testing.T) {
	f := newFixture(t)
	a := f.register("Hayden", "Smith")
	first := f.channel(a, "first")
	second := f.channel(a, "second")

	_, err := f.engine.StartStandup(f.ctx, a, first, 10)
	require.NoError(t, err)
	_, err = f.engine.StartStandup(f.ctx, a, second, 3)
	require.NoError(t, err)
	require.NoError(t, f.engine.SendStandup(f.ctx, a, first, "one"))
	require.NoError(t, f.engine.SendStandup(f.ctx, a, second, "two"))

	f.clock.Advance(3 * time.Second)
	page, err := f.engine.Messages(f.ctx, a, models.ChannelRef(second), 0)
	require.NoError(t, err)
	assert.Len(t, page.Messages, 1)
	status, err := f.engine.StandupActive(f.ctx, a, first)
	require.NoError(t, err)
	assert.True(t, status.IsActive)

	f.clock.Advance(7 * time.Second)
	page, err = f.engine.Messages(f.ctx, a, models.ChannelRef(first), 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "haydensmith: one\n", page.Messages[0].Message)
}

func TestRecoverRearmsStoredStandups(t *testing.T) {
	f := newFixture(t)
	a := f.register("Hayden", "Smith")
	chID := f.channel(a, "general")
	_, err := f.engine.StartStandup(f.ctx, a, chID, 60)
	require.NoError(t, err)
	require.NoError(t, f.engine.SendStandup(f.ctx, a, chID, "persisted"))

	// Simulate a restart: stop the old engine and bring up a new one on
	// the same snapshot, after the deadline has passed.
	f.engine.Close()
	restarted := clock.Fake(epoch.Add(2 * time.Minute))
	engine := New(f.repo, zap.NewNop(), WithClock(restarted))
	defer engine.Close()
	require.NoError(t, engine.Recover(context.Background()))

	page, err := engine.Messages(f.ctx, a, models.ChannelRef(chID), 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "haydensmith: persisted\n", page.Messages[0].Message)
}
