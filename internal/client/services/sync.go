// Package services contains the application services of the wardrobe client:
// the synchronization engine and the per-item wardrobe operations built on
// top of the local store and the remote gateway.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annagav/garderobe/internal/client/api"
	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/client/repositories/checkpoint"
	"github.com/annagav/garderobe/internal/client/repositories/items"
	"github.com/annagav/garderobe/internal/client/repositories/outfits"
	"github.com/annagav/garderobe/internal/client/watch"
	"github.com/annagav/garderobe/internal/common"
	"github.com/annagav/garderobe/internal/dbx"
	"github.com/annagav/garderobe/internal/filex"
	"github.com/annagav/garderobe/internal/logging"
)

// SyncService brings local and remote wardrobe state into agreement.
//
// Contract:
//   - Login/Register: credential exchange followed by one reconciliation in
//     the chosen direction.
//   - Reconcile: session-restore path; compares checkpoint markers and only
//     exchanges state when they differ.
//   - Logout: clears the credential, the marker and the local wardrobe.
//   - At most one reconciliation runs at a time; a second caller waits and
//     then short-circuits on marker equality.
type SyncService interface {
	Login(ctx context.Context, email, password string, direction models.Direction) error
	Register(ctx context.Context, email, password string, direction models.Direction) error
	Reconcile(ctx context.Context, direction models.Direction) error
	Logout(ctx context.Context) error
	Status() models.SyncState
}

type syncService struct {
	client   api.Client
	db       *sql.DB
	cacheDir string
	hub      *watch.Hub
	log      logging.Logger

	mu sync.Mutex // serializes reconciliation passes

	stateMu sync.Mutex
	state   models.SyncState
}

// NewSyncService constructs a SyncService over the given gateway, database,
// and upload cache directory.
func NewSyncService(client api.Client, db *sql.DB, cacheDir string, hub *watch.Hub, log logging.Logger) SyncService {
	return &syncService{
		client:   client,
		db:       db,
		cacheDir: cacheDir,
		hub:      hub,
		log:      log,
		state:    models.SyncIdle,
	}
}

func (s *syncService) checkpointRepo() checkpoint.Repository {
	return checkpoint.NewSQLiteRepository(s.db)
}

func (s *syncService) Status() models.SyncState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.state
}

func (s *syncService) setState(state models.SyncState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

func (s *syncService) Login(ctx context.Context, email, password string, direction models.Direction) error {
	return s.establishSession(ctx, direction, func(ctx context.Context) (*api.Session, error) {
		return s.client.Login(ctx, email, password)
	})
}

func (s *syncService) Register(ctx context.Context, email, password string, direction models.Direction) error {
	return s.establishSession(ctx, direction, func(ctx context.Context) (*api.Session, error) {
		return s.client.Register(ctx, email, password)
	})
}

func (s *syncService) establishSession(ctx context.Context, direction models.Direction, exchange func(context.Context) (*api.Session, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setState(models.SyncAuthenticating)

	// A rejected fresh login is a failed attempt, not a lost session:
	// Unauthenticated is reserved for a missing or revoked stored credential.
	session, err := exchange(ctx)
	if err != nil {
		s.setState(models.SyncFailed)
		return err
	}

	repo := s.checkpointRepo()
	if err := repo.SaveCredential(ctx, session.Token, session.Kind); err != nil {
		s.setState(models.SyncFailed)
		return fmt.Errorf("%w: save credential: %v", common.ErrorStorage, err)
	}
	s.client.SetCredential(session.Token, session.Kind)

	return s.reconcileLocked(ctx, direction, session.Marker)
}

// Reconcile is the session-restore path: it authenticates with the stored
// credential, fetches the profile, and exchanges state only if the
// server-reported marker differs from the local one.
func (s *syncService) Reconcile(ctx context.Context, direction models.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setState(models.SyncAuthenticating)

	repo := s.checkpointRepo()
	cp, err := repo.Load(ctx)
	if err != nil {
		s.setState(models.SyncFailed)
		return fmt.Errorf("%w: load checkpoint: %v", common.ErrorStorage, err)
	}
	if !cp.Authenticated() {
		s.setState(models.SyncUnauthenticated)
		return fmt.Errorf("%w: no credential stored", common.ErrorUnauthorized)
	}
	if checkpoint.Expired(cp, time.Now()) {
		// The server would reject it anyway; treat like a revoked token.
		if err := repo.Clear(ctx); err != nil {
			s.log.Error(ctx, "failed to clear expired credential", "error", err)
		}
		s.setState(models.SyncUnauthenticated)
		return fmt.Errorf("%w: credential expired", common.ErrorUnauthorized)
	}

	s.client.SetCredential(cp.Credential, cp.Kind)

	profile, err := s.client.FetchProfile(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			// Stale or revoked token: equivalent to logout.
			if clearErr := repo.Clear(ctx); clearErr != nil {
				s.log.Error(ctx, "failed to clear rejected credential", "error", clearErr)
			}
			s.setState(models.SyncUnauthenticated)
			return err
		}
		s.setState(models.SyncFailed)
		return err
	}

	return s.reconcileLocked(ctx, direction, profile.Marker)
}

// reconcileLocked runs the checkpoint comparison and, when needed, the full
// exchange. The caller must hold s.mu.
func (s *syncService) reconcileLocked(ctx context.Context, direction models.Direction, serverMarker string) error {
	repo := s.checkpointRepo()
	cp, err := repo.Load(ctx)
	if err != nil {
		s.setState(models.SyncFailed)
		return fmt.Errorf("%w: load checkpoint: %v", common.ErrorStorage, err)
	}

	if cp.Marker != "" && cp.Marker == serverMarker {
		// Nothing diverged since the last agreement.
		s.setState(models.SyncSettled)
		return nil
	}

	s.setState(models.SyncCheckpointMismatch)

	snapshot, assets, tempFiles, err := s.buildUpload(ctx, direction)
	// Every file materialized for this pass is removed no matter how the
	// exchange ends.
	defer filex.RemoveAll(tempFiles)
	if err != nil {
		s.setState(models.SyncFailed)
		return err
	}

	s.setState(models.SyncExchanging)

	reconciled, marker, err := s.client.Exchange(ctx, direction, snapshot, assets)
	if err != nil {
		s.setState(models.SyncFailed)
		return err
	}

	// The exchange succeeded; from here on the local rewrite runs to
	// completion even if the caller's context is being torn down. A half
	// finished destructive rewrite is worse than a late one.
	writeCtx := context.WithoutCancel(ctx)

	if err := s.rewrite(writeCtx, reconciled); err != nil {
		s.setState(models.SyncFailed)
		s.log.Error(writeCtx, "local rewrite failed after successful exchange; local and remote disagree until next reconciliation",
			"error", err)
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	// Persist the marker only after the rewrite committed: an unsaved
	// marker just means the next pass repeats the exchange.
	if err := repo.SaveMarker(writeCtx, marker); err != nil {
		s.setState(models.SyncFailed)
		s.log.Error(writeCtx, "failed to persist checkpoint marker after rewrite", "error", err)
		return fmt.Errorf("%w: save marker: %v", common.ErrorStorage, err)
	}

	s.setState(models.SyncSettled)
	s.hub.Notify()
	s.log.Info(ctx, "reconciliation finished",
		"direction", direction.String(), "items", len(reconciled.Items), "outfits", len(reconciled.Outfits))
	return nil
}

// buildUpload assembles the exchange request: the full local snapshot plus
// materialized image assets when pushing, an empty snapshot when pulling.
// It returns the temporary file paths the caller must remove.
func (s *syncService) buildUpload(ctx context.Context, direction models.Direction) (models.Snapshot, []api.Asset, []string, error) {
	if direction != models.PushLocal {
		return models.Snapshot{}, nil, nil, nil
	}

	itemRepo := items.NewSQLiteRepository(s.db)
	outfitRepo := outfits.NewSQLiteRepository(s.db)

	allItems, err := itemRepo.GetAll(ctx)
	if err != nil {
		return models.Snapshot{}, nil, nil, fmt.Errorf("%w: load items: %v", common.ErrorStorage, err)
	}
	allOutfits, err := outfitRepo.GetAll(ctx)
	if err != nil {
		return models.Snapshot{}, nil, nil, fmt.Errorf("%w: load outfits: %v", common.ErrorStorage, err)
	}

	var assets []api.Asset
	var tempFiles []string
	for i := range allItems {
		item := &allItems[i]
		if item.ImageURI == "" || item.HasRemoteImage() {
			continue
		}
		path, err := filex.MaterializeToDir(item.ImageURI, s.cacheDir)
		if err != nil {
			s.log.Warn(ctx, "skipping unreadable image", "item", item.ID, "uri", item.ImageURI, "error", err)
			continue
		}
		tempFiles = append(tempFiles, path)
		assets = append(assets, api.Asset{ItemID: item.ID, Path: path})
	}

	return models.Snapshot{Items: allItems, Outfits: allOutfits}, assets, tempFiles, nil
}

// rewrite replaces the entire wardrobe with the reconciled snapshot inside
// one transaction: delete everything, then insert the server's rows as-is.
func (s *syncService) rewrite(ctx context.Context, snapshot *models.Snapshot) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		itemRepo := items.NewSQLiteRepository(tx)
		outfitRepo := outfits.NewSQLiteRepository(tx)

		if err := itemRepo.DeleteAll(ctx); err != nil {
			return err
		}
		if err := outfitRepo.DeleteAll(ctx); err != nil {
			return err
		}
		if err := itemRepo.BulkInsert(ctx, snapshot.Items); err != nil {
			return err
		}
		return outfitRepo.BulkInsert(ctx, snapshot.Outfits)
	})
}

// Logout clears the checkpoint and wipes the local wardrobe.
func (s *syncService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkpointRepo().Clear(ctx); err != nil {
		return fmt.Errorf("%w: clear checkpoint: %v", common.ErrorStorage, err)
	}
	s.client.SetCredential("", "")

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := items.NewSQLiteRepository(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return outfits.NewSQLiteRepository(tx).DeleteAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("%w: wipe wardrobe: %v", common.ErrorStorage, err)
	}

	s.setState(models.SyncUnauthenticated)
	s.hub.Notify()
	return nil
}
