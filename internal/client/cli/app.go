// Package cli is a small interactive shell over the wardrobe services, used
// for development and manual testing. Presentation concerns stay here; the
// services underneath are UI-agnostic.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/annagav/garderobe/internal/client/api"
	"github.com/annagav/garderobe/internal/client/config"
	"github.com/annagav/garderobe/internal/client/db"
	"github.com/annagav/garderobe/internal/client/services"
	"github.com/annagav/garderobe/internal/client/watch"
	"github.com/annagav/garderobe/internal/filex"
	"github.com/annagav/garderobe/internal/logging"
)

type App struct {
	config   *config.Config
	db       *sql.DB
	sync     services.SyncService
	wardrobe services.WardrobeService
	log      logging.Logger
	reader   *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewDefault()

	database, err := db.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	cacheDir, err := filex.EnsureDir(c.CacheDir)
	if err != nil {
		database.Close()
		return nil, err
	}

	gateway := api.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout)
	hub := watch.NewHub()

	return &App{
		config:   c,
		db:       database,
		sync:     services.NewSyncService(gateway, database, cacheDir, hub, log),
		wardrobe: services.NewWardrobeService(gateway, database, cacheDir, c.WatchInterval, hub, log),
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.repl(ctx)
}
