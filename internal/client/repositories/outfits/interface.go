package outfits

import (
	"context"

	"github.com/annagav/garderobe/internal/client/models"
)

// Repository describes the outfit half of the relational store, including
// the item/outfit association rows. As with items, DeleteAll and BulkInsert
// are reserved for the synchronization engine's full rewrite.
type Repository interface {
	// Insert stores a new outfit and its member associations. When
	// outfit.ID is 0 a local rowid is assigned and written back.
	Insert(ctx context.Context, outfit *models.Outfit) error

	// Update renames an outfit and replaces its member set.
	Update(ctx context.Context, outfit *models.Outfit) error

	// DeleteByID removes one outfit; association rows cascade.
	DeleteByID(ctx context.Context, id int64) error

	// GetByID returns one outfit with its member ids, or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Outfit, error)

	// GetAll returns every outfit with member ids.
	GetAll(ctx context.Context) ([]models.Outfit, error)

	// Search returns outfits matching the optional name filter together
	// with their item counts; outfits with zero items are included.
	Search(ctx context.Context, query string) ([]models.OutfitOverview, error)

	// DeleteAll wipes outfits (associations cascade). Sync engine only.
	DeleteAll(ctx context.Context) error

	// BulkInsert stores outfits exactly as given, ids included. Sync engine only.
	BulkInsert(ctx context.Context, outfits []models.Outfit) error
}
