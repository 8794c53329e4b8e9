package services

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/annagav/garderobe/internal/client/api"
	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/logging"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeGateway is a scriptable api.Client. Zero value behaves as a healthy
// server with empty state.
type fakeGateway struct {
	mu sync.Mutex

	credential string
	kind       string

	session  *api.Session
	loginErr error

	profileMarker string
	profileErr    error

	exchangeReply  models.Snapshot
	exchangeMarker string
	exchangeErr    error

	exchangeCalls  int
	lastDirection  models.Direction
	lastUpload     models.Snapshot
	lastAssets     []api.Asset
	assetsReadable bool

	resourceMarker string
	resourceErr    error
	nextServerID   int64
}

var _ api.Client = (*fakeGateway)(nil)

func (f *fakeGateway) SetCredential(credential, kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credential = credential
	f.kind = kind
}

func (f *fakeGateway) Login(ctx context.Context, email, password string) (*api.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.session, nil
}

func (f *fakeGateway) Register(ctx context.Context, email, password string) (*api.Session, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeGateway) FetchProfile(ctx context.Context) (*api.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return &api.Profile{Email: "user@example.com", Marker: f.profileMarker}, nil
}

func (f *fakeGateway) Exchange(ctx context.Context, direction models.Direction, snapshot models.Snapshot, assets []api.Asset) (*models.Snapshot, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.exchangeCalls++
	f.lastDirection = direction
	f.lastUpload = snapshot
	f.lastAssets = assets

	f.assetsReadable = true
	for _, a := range assets {
		if _, err := os.Stat(a.Path); err != nil {
			f.assetsReadable = false
		}
	}

	if f.exchangeErr != nil {
		return nil, "", f.exchangeErr
	}
	reply := f.exchangeReply
	return &reply, f.exchangeMarker, nil
}

func (f *fakeGateway) CreateItem(ctx context.Context, item *models.ClothingItem) (*models.ClothingItem, string, error) {
	if f.resourceErr != nil {
		return nil, "", f.resourceErr
	}
	persisted := *item
	f.nextServerID++
	persisted.ID = 500 + f.nextServerID
	return &persisted, f.resourceMarker, nil
}

func (f *fakeGateway) UpdateItem(ctx context.Context, item *models.ClothingItem) (*models.ClothingItem, string, error) {
	if f.resourceErr != nil {
		return nil, "", f.resourceErr
	}
	persisted := *item
	return &persisted, f.resourceMarker, nil
}

func (f *fakeGateway) DeleteItem(ctx context.Context, id int64) (string, error) {
	if f.resourceErr != nil {
		return "", f.resourceErr
	}
	return f.resourceMarker, nil
}

func (f *fakeGateway) SetFavorite(ctx context.Context, id int64, favorite bool) (string, error) {
	if f.resourceErr != nil {
		return "", f.resourceErr
	}
	return f.resourceMarker, nil
}

func (f *fakeGateway) CreateOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, string, error) {
	if f.resourceErr != nil {
		return nil, "", f.resourceErr
	}
	persisted := *outfit
	f.nextServerID++
	persisted.ID = 900 + f.nextServerID
	return &persisted, f.resourceMarker, nil
}

func (f *fakeGateway) UpdateOutfit(ctx context.Context, outfit *models.Outfit) (*models.Outfit, string, error) {
	if f.resourceErr != nil {
		return nil, "", f.resourceErr
	}
	persisted := *outfit
	return &persisted, f.resourceMarker, nil
}

func (f *fakeGateway) DeleteOutfit(ctx context.Context, id int64) (string, error) {
	if f.resourceErr != nil {
		return "", f.resourceErr
	}
	return f.resourceMarker, nil
}

func (f *fakeGateway) UploadItemImage(ctx context.Context, itemID int64, path string) (string, string, error) {
	if f.resourceErr != nil {
		return "", "", f.resourceErr
	}
	return "https://cdn.example.com/uploaded.jpg", f.resourceMarker, nil
}

func (f *fakeGateway) DownloadImage(ctx context.Context, ref string, destDir string) (string, error) {
	return "", f.resourceErr
}
