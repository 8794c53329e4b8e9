package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/dbx"
)

const (
	keyCredential = "credential"
	keyKind       = "credential_kind"
	keyMarker     = "checkpoint"
)

// SQLiteRepository stores the checkpoint in the metadata key/value table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Checkpoint, error) {
	cp := &models.Checkpoint{}
	var err error

	if cp.Credential, err = r.get(ctx, keyCredential); err != nil {
		return nil, err
	}
	if cp.Kind, err = r.get(ctx, keyKind); err != nil {
		return nil, err
	}
	if cp.Marker, err = r.get(ctx, keyMarker); err != nil {
		return nil, err
	}
	return cp, nil
}

func (r *SQLiteRepository) SaveCredential(ctx context.Context, credential, kind string) error {
	if err := r.set(ctx, keyCredential, credential); err != nil {
		return err
	}
	return r.set(ctx, keyKind, kind)
}

func (r *SQLiteRepository) SaveMarker(ctx context.Context, marker string) error {
	return r.set(ctx, keyMarker, marker)
}

// Clear removes all three keys in one statement so a failure can never leave
// a kind or marker behind without its credential.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key IN (?, ?, ?)`,
		keyCredential, keyKind, keyMarker)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}
