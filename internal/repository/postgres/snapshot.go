package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/huddle/internal/codec"
	"github.com/lalith-99/huddle/internal/models"
)

// snapshotRowID is the primary key of the single snapshot row. The table
// is keyed so a future multi-workspace deployment can add rows.
const snapshotRowID = 1

type SnapshotStore struct {
	pool *pgxpool.Pool
}

func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// EnsureSchema creates the snapshot table if it does not exist yet.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS workspace_snapshots (
			id         integer PRIMARY KEY,
			data       bytea NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Load(ctx context.Context) (*models.Workspace, error) {
	query := `
		SELECT data
		FROM workspace_snapshots
		WHERE id = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, query, snapshotRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.Workspace{}, nil
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return codec.DecodeWorkspace(data)
}

func (s *SnapshotStore) Save(ctx context.Context, ws *models.Workspace) error {
	data, err := codec.EncodeWorkspace(ws)
	if err != nil {
		return err
	}

	// Upsert: the first save inserts the row, every later one replaces it.
	query := `
		INSERT INTO workspace_snapshots (id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	if _, err := s.pool.Exec(ctx, query, snapshotRowID, data); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
