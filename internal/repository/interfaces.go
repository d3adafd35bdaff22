package repository

import (
	"context"

	"github.com/lalith-99/huddle/internal/models"
)

// SnapshotRepository persists the whole workspace as one unit.
//
// The engine wraps every operation in load → mutate → save under its own
// lock, so implementations only need each call to be atomic on its own.
//
// Load must hand back a private copy: the engine mutates it freely and
// simply drops it when an operation fails. A backend that returned
// shared state would leak half-applied changes.
//
// Load on a backend that has never been saved returns an empty
// workspace, not an error.
type SnapshotRepository interface {
	Load(ctx context.Context) (*models.Workspace, error)
	Save(ctx context.Context, ws *models.Workspace) error
}
