// Package api is the typed gateway to the wardrobe backend: authenticated
// JSON calls plus raw image transfer. The wire format is owned by the
// backend; everything here maps it onto domain models and the shared error
// taxonomy (common.ErrorTransport / ErrorUnauthorized / ErrorRejected).
package api

import (
	"context"

	"github.com/annagav/garderobe/internal/client/models"
)

// Session is the outcome of a successful credential exchange.
type Session struct {
	Token  string
	Kind   string
	Marker string
}

// Profile is the authenticated account as reported by the server, carrying
// the server-side checkpoint marker the engine compares against.
type Profile struct {
	Email  string
	Marker string
}

// Asset is one image file materialized for upload, keyed by the clothing
// item it belongs to.
type Asset struct {
	ItemID int64
	Path   string
}

// Client is the remote gateway surface used by the services layer.
type Client interface {
	// SetCredential installs the credential attached to subsequent calls.
	SetCredential(credential, kind string)

	// Register creates an account and returns its first session.
	Register(ctx context.Context, email, password string) (*Session, error)

	// Login exchanges credentials for a session.
	Login(ctx context.Context, email, password string) (*Session, error)

	// FetchProfile returns the account and its checkpoint marker.
	FetchProfile(ctx context.Context) (*Profile, error)

	// Exchange performs the full-state reconciliation call and returns the
	// reconciled wardrobe plus the new checkpoint marker. The reply is the
	// single source of truth regardless of direction.
	Exchange(ctx context.Context, direction models.Direction, snapshot models.Snapshot, assets []Asset) (*models.Snapshot, string, error)

	// Single-resource endpoints. Each returns the persisted resource
	// (ids and image URLs as assigned by the server) and a new marker.
	CreateItem(ctx context.Context, item *models.ClothingItem) (*models.ClothingItem, string, error)
	UpdateItem(ctx context.Context, item *models.ClothingItem) (*models.ClothingItem, string, error)
	DeleteItem(ctx context.Context, id int64) (string, error)
	SetFavorite(ctx context.Context, id int64, favorite bool) (string, error)
	CreateOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, string, error)
	UpdateOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, string, error)
	DeleteOutfit(ctx context.Context, id int64) (string, error)

	// UploadItemImage attaches an image file to one item and returns the
	// remote URL of the stored asset plus a new marker.
	UploadItemImage(ctx context.Context, itemID int64, path string) (string, string, error)

	// DownloadImage fetches an image by reference into destDir and returns
	// the local path.
	DownloadImage(ctx context.Context, ref string, destDir string) (string, error)
}
