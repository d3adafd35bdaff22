// Package memory keeps the workspace snapshot in process memory.
//
// It stores encoded bytes rather than the live structs, so every Load
// decodes a fresh copy just like the durable backends do.
package memory

import (
	"context"
	"sync"

	"github.com/lalith-99/huddle/internal/codec"
	"github.com/lalith-99/huddle/internal/models"
)

type SnapshotStore struct {
	mu   sync.RWMutex
	data []byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

func (s *SnapshotStore) Load(ctx context.Context) (*models.Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return codec.DecodeWorkspace(s.data)
}

func (s *SnapshotStore) Save(ctx context.Context, ws *models.Workspace) error {
	data, err := codec.EncodeWorkspace(ws)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}
