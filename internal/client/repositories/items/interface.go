package items

import (
	"context"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/client/search"
)

// Repository describes the clothing-item half of the relational store.
// DeleteAll and BulkInsert exist solely for the synchronization engine's
// full rewrite; every other writer works one row at a time.
type Repository interface {
	// Insert stores a new item. When item.ID is 0 a local rowid is
	// assigned and written back into item.ID.
	Insert(ctx context.Context, item *models.ClothingItem) error

	// Update rewrites every column of an existing item.
	Update(ctx context.Context, item *models.ClothingItem) error

	// DeleteByID removes one item; association rows cascade.
	DeleteByID(ctx context.Context, id int64) error

	// GetByID returns one item or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.ClothingItem, error)

	// GetAll returns every item.
	GetAll(ctx context.Context) ([]models.ClothingItem, error)

	// SetFavorite flips the favorite flag of one item.
	SetFavorite(ctx context.Context, id int64, favorite bool) error

	// Search runs the filtered, sorted query described by the criteria.
	Search(ctx context.Context, c search.Criteria) ([]models.ClothingItem, error)

	// DeleteAll wipes the table. Sync engine only.
	DeleteAll(ctx context.Context) error

	// BulkInsert stores rows exactly as given, ids included. Sync engine only.
	BulkInsert(ctx context.Context, items []models.ClothingItem) error

	// CountAll returns the number of stored items.
	CountAll(ctx context.Context) (int64, error)
}
