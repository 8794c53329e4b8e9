package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/annagav/garderobe/internal/client/api"
	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/client/repositories/checkpoint"
	"github.com/annagav/garderobe/internal/client/repositories/items"
	"github.com/annagav/garderobe/internal/client/repositories/outfits"
	"github.com/annagav/garderobe/internal/client/search"
	"github.com/annagav/garderobe/internal/client/watch"
	"github.com/annagav/garderobe/internal/common"
	"github.com/annagav/garderobe/internal/filex"
	"github.com/annagav/garderobe/internal/logging"
)

// WardrobeService covers every single-resource operation: item and outfit
// CRUD, favorite toggling, filtered search, observed (live) search results,
// and image resolution.
//
// Mutations are remote-first when a credential is stored: the server call
// runs first and the local write only happens after it succeeded, so local
// and remote never drift silently. Without a credential the app runs in
// pure local mode and writes locally only.
type WardrobeService interface {
	AddItem(ctx context.Context, item *models.ClothingItem) error
	UpdateItem(ctx context.Context, item *models.ClothingItem) error
	DeleteItem(ctx context.Context, id int64) error
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
	GetItem(ctx context.Context, id int64) (*models.ClothingItem, error)
	SearchItems(ctx context.Context, c search.Criteria) ([]models.ClothingItem, error)
	ObserveItems(ctx context.Context, c search.Criteria) <-chan []models.ClothingItem

	AddOutfit(ctx context.Context, outfit *models.Outfit) error
	UpdateOutfit(ctx context.Context, outfit *models.Outfit) error
	DeleteOutfit(ctx context.Context, id int64) error
	GetOutfit(ctx context.Context, id int64) (*models.Outfit, error)
	SearchOutfits(ctx context.Context, query string) ([]models.OutfitOverview, error)
	ObserveOutfits(ctx context.Context, query string) <-chan []models.OutfitOverview

	// ItemImage returns a local path for the item's image, downloading the
	// asset into the cache when it only exists remotely.
	ItemImage(ctx context.Context, id int64) (string, error)
}

type wardrobeService struct {
	client     api.Client
	db         *sql.DB
	cacheDir   string
	hub        *watch.Hub
	watchEvery time.Duration
	log        logging.Logger
}

// NewWardrobeService constructs a WardrobeService. watchEvery is the floor
// between re-evaluations of observed queries; 0 refreshes on every change.
func NewWardrobeService(client api.Client, db *sql.DB, cacheDir string, watchEvery time.Duration, hub *watch.Hub, log logging.Logger) WardrobeService {
	return &wardrobeService{client: client, db: db, cacheDir: cacheDir, hub: hub, watchEvery: watchEvery, log: log}
}

func (s *wardrobeService) itemRepo() items.Repository {
	return items.NewSQLiteRepository(s.db)
}

func (s *wardrobeService) outfitRepo() outfits.Repository {
	return outfits.NewSQLiteRepository(s.db)
}

func (s *wardrobeService) checkpointRepo() checkpoint.Repository {
	return checkpoint.NewSQLiteRepository(s.db)
}

// authenticated reports whether a credential is stored, installing it on the
// gateway when present.
func (s *wardrobeService) authenticated(ctx context.Context) (bool, error) {
	cp, err := s.checkpointRepo().Load(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: load checkpoint: %v", common.ErrorStorage, err)
	}
	if !cp.Authenticated() {
		return false, nil
	}
	s.client.SetCredential(cp.Credential, cp.Kind)
	return true, nil
}

func (s *wardrobeService) saveMarker(ctx context.Context, marker string) {
	if marker == "" {
		return
	}
	if err := s.checkpointRepo().SaveMarker(ctx, marker); err != nil {
		s.log.Error(ctx, "failed to persist checkpoint marker", "error", err)
	}
}

func (s *wardrobeService) AddItem(ctx context.Context, item *models.ClothingItem) error {
	authed, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if authed {
		persisted, marker, err := s.client.CreateItem(ctx, item)
		if err != nil {
			return err
		}
		marker = s.maybeUploadImage(ctx, persisted, item.ImageURI, marker)
		*item = *persisted
		if err := s.itemRepo().Insert(ctx, item); err != nil {
			s.logInconsistency(ctx, "item create", err)
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		s.saveMarker(ctx, marker)
	} else {
		if err := s.itemRepo().Insert(ctx, item); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
	}

	s.hub.Notify()
	return nil
}

func (s *wardrobeService) UpdateItem(ctx context.Context, item *models.ClothingItem) error {
	authed, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if authed {
		persisted, marker, err := s.client.UpdateItem(ctx, item)
		if err != nil {
			return err
		}
		marker = s.maybeUploadImage(ctx, persisted, item.ImageURI, marker)
		*item = *persisted
		if err := s.itemRepo().Update(ctx, item); err != nil {
			s.logInconsistency(ctx, "item update", err)
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		s.saveMarker(ctx, marker)
	} else {
		if err := s.itemRepo().Update(ctx, item); err != nil {
			return err
		}
	}

	s.hub.Notify()
	return nil
}

// maybeUploadImage pushes a still-local image through the per-item image
// endpoint and rewrites the item's reference to the returned remote URL.
// Failures leave the local reference in place; the next full exchange will
// carry the asset.
func (s *wardrobeService) maybeUploadImage(ctx context.Context, persisted *models.ClothingItem, imageURI, marker string) string {
	if imageURI == "" || persisted == nil {
		return marker
	}
	path, ok := filex.LocalPath(imageURI)
	if !ok {
		return marker
	}

	url, newMarker, err := s.client.UploadItemImage(ctx, persisted.ID, path)
	if err != nil {
		s.log.Warn(ctx, "image upload failed, keeping local reference", "item", persisted.ID, "error", err)
		return marker
	}
	persisted.ImageURI = url
	return newMarker
}

func (s *wardrobeService) DeleteItem(ctx context.Context, id int64) error {
	authed, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if authed {
		marker, err := s.client.DeleteItem(ctx, id)
		if err != nil {
			return err
		}
		if err := s.itemRepo().DeleteByID(ctx, id); err != nil {
			s.logInconsistency(ctx, "item delete", err)
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		s.saveMarker(ctx, marker)
	} else {
		if err := s.itemRepo().DeleteByID(ctx, id); err != nil {
			return err
		}
	}

	s.hub.Notify()
	return nil
}

func (s *wardrobeService) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	item, err := s.itemRepo().GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	next := !item.Favorite

	authed, err := s.authenticated(ctx)
	if err != nil {
		return false, err
	}

	if authed {
		marker, err := s.client.SetFavorite(ctx, id, next)
		if err != nil {
			return false, err
		}
		if err := s.itemRepo().SetFavorite(ctx, id, next); err != nil {
			s.logInconsistency(ctx, "favorite toggle", err)
			return false, fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		s.saveMarker(ctx, marker)
	} else {
		if err := s.itemRepo().SetFavorite(ctx, id, next); err != nil {
			return false, err
		}
	}

	s.hub.Notify()
	return next, nil
}

func (s *wardrobeService) GetItem(ctx context.Context, id int64) (*models.ClothingItem, error) {
	return s.itemRepo().GetByID(ctx, id)
}

func (s *wardrobeService) SearchItems(ctx context.Context, c search.Criteria) ([]models.ClothingItem, error) {
	return s.itemRepo().Search(ctx, c)
}

func (s *wardrobeService) ObserveItems(ctx context.Context, c search.Criteria) <-chan []models.ClothingItem {
	return watch.Observe(ctx, s.hub, s.watchEvery, func(ctx context.Context) ([]models.ClothingItem, error) {
		return s.itemRepo().Search(ctx, c)
	})
}

func (s *wardrobeService) AddOutfit(ctx context.Context, outfit *models.Outfit) error {
	authed, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if authed {
		persisted, marker, err := s.client.CreateOutfit(ctx, outfit)
		if err != nil {
			return err
		}
		*outfit = *persisted
		if err := s.outfitRepo().Insert(ctx, outfit); err != nil {
			s.logInconsistency(ctx, "outfit create", err)
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		s.saveMarker(ctx, marker)
	} else {
		if err := s.outfitRepo().Insert(ctx, outfit); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
	}

	s.hub.Notify()
	return nil
}

func (s *wardrobeService) UpdateOutfit(ctx context.Context, outfit *models.Outfit) error {
	authed, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if authed {
		persisted, marker, err := s.client.UpdateOutfit(ctx, outfit)
		if err != nil {
			return err
		}
		*outfit = *persisted
		if err := s.outfitRepo().Update(ctx, outfit); err != nil {
			s.logInconsistency(ctx, "outfit update", err)
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		s.saveMarker(ctx, marker)
	} else {
		if err := s.outfitRepo().Update(ctx, outfit); err != nil {
			return err
		}
	}

	s.hub.Notify()
	return nil
}

func (s *wardrobeService) DeleteOutfit(ctx context.Context, id int64) error {
	authed, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if authed {
		marker, err := s.client.DeleteOutfit(ctx, id)
		if err != nil {
			return err
		}
		if err := s.outfitRepo().DeleteByID(ctx, id); err != nil {
			s.logInconsistency(ctx, "outfit delete", err)
			return fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		s.saveMarker(ctx, marker)
	} else {
		if err := s.outfitRepo().DeleteByID(ctx, id); err != nil {
			return err
		}
	}

	s.hub.Notify()
	return nil
}

func (s *wardrobeService) GetOutfit(ctx context.Context, id int64) (*models.Outfit, error) {
	return s.outfitRepo().GetByID(ctx, id)
}

func (s *wardrobeService) SearchOutfits(ctx context.Context, query string) ([]models.OutfitOverview, error) {
	return s.outfitRepo().Search(ctx, query)
}

func (s *wardrobeService) ObserveOutfits(ctx context.Context, query string) <-chan []models.OutfitOverview {
	return watch.Observe(ctx, s.hub, s.watchEvery, func(ctx context.Context) ([]models.OutfitOverview, error) {
		return s.outfitRepo().Search(ctx, query)
	})
}

func (s *wardrobeService) ItemImage(ctx context.Context, id int64) (string, error) {
	item, err := s.itemRepo().GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if item.ImageURI == "" {
		return "", fmt.Errorf("item %d image: %w", id, common.ErrorNotFound)
	}

	if path, ok := filex.LocalPath(item.ImageURI); ok {
		return path, nil
	}
	return s.client.DownloadImage(ctx, item.ImageURI, s.cacheDir)
}

// logInconsistency records the one failure mode where local and remote can
// disagree: the remote write already succeeded and the local one did not.
func (s *wardrobeService) logInconsistency(ctx context.Context, op string, err error) {
	s.log.Error(ctx, "local write failed after successful remote call; stores disagree until next reconciliation",
		"op", op, "error", err)
}
