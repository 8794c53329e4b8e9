package outfits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/client/search"
	"github.com/annagav/garderobe/internal/common"
	"github.com/annagav/garderobe/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, outfit *models.Outfit) error {
	if outfit.ID != 0 {
		if _, err := r.db.ExecContext(ctx, `INSERT INTO outfits (id, name) VALUES (?, ?)`,
			outfit.ID, outfit.Name); err != nil {
			return fmt.Errorf("failed to insert outfit: %w", err)
		}
	} else {
		res, err := r.db.ExecContext(ctx, `INSERT INTO outfits (name) VALUES (?)`, outfit.Name)
		if err != nil {
			return fmt.Errorf("failed to insert outfit: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get inserted id: %w", err)
		}
		outfit.ID = id
	}

	return r.replaceMembers(ctx, outfit.ID, outfit.ItemIDs)
}

func (r *SQLiteRepository) Update(ctx context.Context, outfit *models.Outfit) error {
	res, err := r.db.ExecContext(ctx, `UPDATE outfits SET name=? WHERE id=?`, outfit.Name, outfit.ID)
	if err != nil {
		return fmt.Errorf("failed to update outfit: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("outfit %d: %w", outfit.ID, common.ErrorNotFound)
	}
	return r.replaceMembers(ctx, outfit.ID, outfit.ItemIDs)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM outfits WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete outfit: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("outfit %d: %w", id, common.ErrorNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Outfit, error) {
	o := &models.Outfit{ID: id}
	err := r.db.QueryRowContext(ctx, `SELECT name FROM outfits WHERE id=?`, id).Scan(&o.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("outfit %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit: %w", err)
	}

	o.ItemIDs, err = r.memberIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Outfit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM outfits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select outfits: %w", err)
	}
	defer rows.Close()

	var result []models.Outfit
	for rows.Next() {
		var o models.Outfit
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].ItemIDs, err = r.memberIDs(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *SQLiteRepository) Search(ctx context.Context, query string) ([]models.OutfitOverview, error) {
	q, args := search.BuildOutfits(query)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search outfits: %w", err)
	}
	defer rows.Close()

	var result []models.OutfitOverview
	for rows.Next() {
		var o models.OutfitOverview
		if err := rows.Scan(&o.ID, &o.Name, &o.ItemCount); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outfits`); err != nil {
		return fmt.Errorf("failed to delete outfits: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) BulkInsert(ctx context.Context, outfitRows []models.Outfit) error {
	for i := range outfitRows {
		o := &outfitRows[i]
		if _, err := r.db.ExecContext(ctx, `INSERT INTO outfits (id, name) VALUES (?, ?)`,
			o.ID, o.Name); err != nil {
			return fmt.Errorf("failed to bulk insert outfit %d: %w", o.ID, err)
		}
		if err := r.replaceMembers(ctx, o.ID, o.ItemIDs); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) memberIDs(ctx context.Context, outfitID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT item_id FROM outfit_items WHERE outfit_id=? ORDER BY item_id`, outfitID)
	if err != nil {
		return nil, fmt.Errorf("failed to select outfit members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// replaceMembers rewrites the association rows of one outfit. Duplicate ids
// in the input collapse onto the composite primary key via INSERT OR IGNORE.
func (r *SQLiteRepository) replaceMembers(ctx context.Context, outfitID int64, itemIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outfit_items WHERE outfit_id=?`, outfitID); err != nil {
		return fmt.Errorf("failed to clear outfit members: %w", err)
	}
	for _, itemID := range itemIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO outfit_items (item_id, outfit_id) VALUES (?, ?)`,
			itemID, outfitID); err != nil {
			return fmt.Errorf("failed to add item %d to outfit %d: %w", itemID, outfitID, err)
		}
	}
	return nil
}
