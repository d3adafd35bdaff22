// Package redis stores the workspace snapshot under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/lalith-99/huddle/internal/codec"
	"github.com/lalith-99/huddle/internal/models"
	goredis "github.com/redis/go-redis/v9"
)

const DefaultKey = "huddle:workspace:snapshot"

type SnapshotStore struct {
	client goredis.Cmdable
	key    string
}

// NewSnapshotStore takes Cmdable so a cluster client or a pipeline works
// as well as a plain *redis.Client.
func NewSnapshotStore(client goredis.Cmdable, key string) *SnapshotStore {
	if key == "" {
		key = DefaultKey
	}
	return &SnapshotStore{client: client, key: key}
}

func (s *SnapshotStore) Load(ctx context.Context) (*models.Workspace, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &models.Workspace{}, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return codec.DecodeWorkspace(data)
}

func (s *SnapshotStore) Save(ctx context.Context, ws *models.Workspace) error {
	data, err := codec.EncodeWorkspace(ws)
	if err != nil {
		return err
	}
	// No expiry: the snapshot is the system of record.
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}
