package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lalith-99/huddle/internal/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis implements the two commands the store uses. The embedded
// interface is nil, so any other call panics and fails the test.
type fakeRedis struct {
	goredis.Cmdable
	values map[string]string
	setErr error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *goredis.StringCmd {
	value, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	if f.setErr != nil {
		return goredis.NewStatusResult("", f.setErr)
	}
	f.values[key] = string(value.([]byte))
	return goredis.NewStatusResult("OK", nil)
}

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	store := NewSnapshotStore(&fakeRedis{values: map[string]string{}}, "")
	ws, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ws.Channels)
}

func TestSaveThenLoad(t *testing.T) {
	client := &fakeRedis{values: map[string]string{}}
	store := NewSnapshotStore(client, "test:snap")
	ctx := context.Background()

	ws := &models.Workspace{
		Channels:      []*models.Channel{{ID: 1, Name: "general", IsPublic: true, MemberIDs: []int{1}}},
		LastChannelID: 1,
	}
	require.NoError(t, store.Save(ctx, ws))
	assert.Contains(t, client.values, "test:snap")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ws, loaded)
}

func TestSaveError(t *testing.T) {
	store := NewSnapshotStore(&fakeRedis{values: map[string]string{}, setErr: errors.New("READONLY")}, "")
	err := store.Save(context.Background(), &models.Workspace{})
	assert.ErrorContains(t, err, "set snapshot")
}
