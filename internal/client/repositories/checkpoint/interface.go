package checkpoint

import (
	"context"

	"github.com/annagav/garderobe/internal/client/models"
)

// Repository persists the reconciliation checkpoint: the bearer credential,
// its kind, and the opaque last-synchronized marker.
type Repository interface {
	// Load returns the stored checkpoint; missing keys come back as empty
	// fields, never as an error.
	Load(ctx context.Context) (*models.Checkpoint, error)

	// SaveCredential stores the credential and its kind.
	SaveCredential(ctx context.Context, credential, kind string) error

	// SaveMarker stores a new last-synchronized marker.
	SaveMarker(ctx context.Context, marker string) error

	// Clear wipes credential, kind and marker. Called on logout and on any
	// authentication-rejected remote response.
	Clear(ctx context.Context) error
}
