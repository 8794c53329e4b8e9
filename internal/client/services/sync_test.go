package services

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/annagav/garderobe/internal/client/api"
	"github.com/annagav/garderobe/internal/client/db"
	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/client/repositories/checkpoint"
	"github.com/annagav/garderobe/internal/client/repositories/items"
	"github.com/annagav/garderobe/internal/client/repositories/outfits"
	"github.com/annagav/garderobe/internal/client/watch"
	"github.com/annagav/garderobe/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncFixture struct {
	db       *sql.DB
	gateway  *fakeGateway
	cacheDir string
	sync     SyncService
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	sqlDB, err := db.Open(context.Background(), "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gateway := &fakeGateway{}
	cacheDir := t.TempDir()

	return &syncFixture{
		db:       sqlDB,
		gateway:  gateway,
		cacheDir: cacheDir,
		sync:     NewSyncService(gateway, sqlDB, cacheDir, watch.NewHub(), discardLogger()),
	}
}

func (f *syncFixture) seedCheckpoint(t *testing.T, marker string) {
	t.Helper()
	repo := checkpoint.NewSQLiteRepository(f.db)
	require.NoError(t, repo.SaveCredential(context.Background(), "tok-1", common.CredentialKindBearer))
	if marker != "" {
		require.NoError(t, repo.SaveMarker(context.Background(), marker))
	}
}

func (f *syncFixture) seedItem(t *testing.T, item *models.ClothingItem) {
	t.Helper()
	require.NoError(t, items.NewSQLiteRepository(f.db).Insert(context.Background(), item))
}

func (f *syncFixture) itemNames(t *testing.T) []string {
	t.Helper()
	all, err := items.NewSQLiteRepository(f.db).GetAll(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, item := range all {
		names = append(names, item.Name)
	}
	return names
}

func (f *syncFixture) marker(t *testing.T) string {
	t.Helper()
	cp, err := checkpoint.NewSQLiteRepository(f.db).Load(context.Background())
	require.NoError(t, err)
	return cp.Marker
}

func cacheEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestReconcile_NoCredential(t *testing.T) {
	f := newSyncFixture(t)

	err := f.sync.Reconcile(context.Background(), models.PullRemote)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, models.SyncUnauthenticated, f.sync.Status())
	assert.Zero(t, f.gateway.exchangeCalls)
}

func TestReconcile_CheckpointShortCircuit(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")
	f.seedItem(t, &models.ClothingItem{Name: "shirt", Category: "shirt", Season: "summer", Material: "cotton"})
	f.gateway.profileMarker = "m1"

	require.NoError(t, f.sync.Reconcile(context.Background(), models.PullRemote))

	assert.Equal(t, models.SyncSettled, f.sync.Status())
	assert.Zero(t, f.gateway.exchangeCalls, "no exchange when markers agree")
	assert.Equal(t, []string{"shirt"}, f.itemNames(t), "local rows untouched")
}

func TestReconcile_AuthRejectionClearsCredential(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")
	f.gateway.profileErr = common.ErrorUnauthorized

	err := f.sync.Reconcile(context.Background(), models.PullRemote)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, models.SyncUnauthenticated, f.sync.Status())

	cp, loadErr := checkpoint.NewSQLiteRepository(f.db).Load(context.Background())
	require.NoError(t, loadErr)
	assert.False(t, cp.Authenticated(), "stale credential treated as logout")
}

func TestReconcile_TransportFailureLeavesStateAlone(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")
	f.seedItem(t, &models.ClothingItem{Name: "shirt", Category: "shirt", Season: "summer", Material: "cotton"})
	f.gateway.profileMarker = "m2"
	f.gateway.exchangeErr = common.ErrorTransport

	err := f.sync.Reconcile(context.Background(), models.PullRemote)
	assert.ErrorIs(t, err, common.ErrorTransport)
	assert.Equal(t, models.SyncFailed, f.sync.Status())
	assert.Equal(t, []string{"shirt"}, f.itemNames(t))
	assert.Equal(t, "m1", f.marker(t))
}

func TestLogin_AdoptRemoteScenario(t *testing.T) {
	// User with local-only {shirt, jeans} and no prior checkpoint logs in
	// choosing to adopt the server's data.
	f := newSyncFixture(t)
	f.seedItem(t, &models.ClothingItem{Name: "shirt", Category: "shirt", Season: "summer", Material: "cotton"})
	f.seedItem(t, &models.ClothingItem{Name: "jeans", Category: "pants", Season: "all", Material: "denim"})

	f.gateway.session = &api.Session{Token: "tok-1", Kind: common.CredentialKindBearer, Marker: "m-server"}
	f.gateway.exchangeReply = models.Snapshot{Items: []models.ClothingItem{
		{ID: 1, Name: "jacket", Category: "jacket", Season: "winter", Material: "wool"},
		{ID: 2, Name: "boots", Category: "shoes", Season: "winter", Material: "leather"},
	}}
	f.gateway.exchangeMarker = "m1"

	require.NoError(t, f.sync.Login(context.Background(), "a@example.com", "pw", models.PullRemote))

	assert.Equal(t, models.SyncSettled, f.sync.Status())
	assert.ElementsMatch(t, []string{"jacket", "boots"}, f.itemNames(t))
	assert.Equal(t, "m1", f.marker(t))
	assert.Equal(t, models.PullRemote, f.gateway.lastDirection)
	assert.Empty(t, f.gateway.lastUpload.Items, "pull sends an empty snapshot")
}

func TestReconcile_PushSendsSnapshotAndAssets(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")

	image := filepath.Join(t.TempDir(), "shirt.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg"), 0o600))

	f.seedItem(t, &models.ClothingItem{Name: "shirt", Category: "shirt", Season: "summer", Material: "cotton", ImageURI: image})
	f.seedItem(t, &models.ClothingItem{Name: "cap", Category: "accessory", Season: "summer", Material: "cotton",
		ImageURI: "https://cdn.example.com/cap.jpg"})

	f.gateway.profileMarker = "m2"
	f.gateway.exchangeMarker = "m2"
	f.gateway.exchangeReply = models.Snapshot{}

	require.NoError(t, f.sync.Reconcile(context.Background(), models.PushLocal))

	assert.Equal(t, models.PushLocal, f.gateway.lastDirection)
	assert.Len(t, f.gateway.lastUpload.Items, 2, "full local snapshot sent")
	require.Len(t, f.gateway.lastAssets, 1, "remote https image is not re-uploaded")
	assert.True(t, f.gateway.assetsReadable, "asset file existed during the call")
	assert.Zero(t, cacheEntries(t, f.cacheDir), "temp files removed after success")
}

func TestReconcile_TempFilesRemovedOnFailure(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")

	image := filepath.Join(t.TempDir(), "shirt.jpg")
	require.NoError(t, os.WriteFile(image, []byte("jpeg"), 0o600))
	f.seedItem(t, &models.ClothingItem{Name: "shirt", Category: "shirt", Season: "summer", Material: "cotton", ImageURI: image})

	f.gateway.profileMarker = "m2"
	f.gateway.exchangeErr = common.ErrorTransport

	err := f.sync.Reconcile(context.Background(), models.PushLocal)
	assert.ErrorIs(t, err, common.ErrorTransport)
	assert.Zero(t, cacheEntries(t, f.cacheDir), "temp files removed after failure too")
}

func TestReconcile_MidRewriteFailureKeepsMarker(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")
	f.seedItem(t, &models.ClothingItem{Name: "shirt", Category: "shirt", Season: "summer", Material: "cotton"})

	before, err := items.NewSQLiteRepository(f.db).GetAll(context.Background())
	require.NoError(t, err)

	f.gateway.profileMarker = "m2"
	f.gateway.exchangeMarker = "m2"
	// Duplicate primary keys make the bulk insert fail partway through.
	f.gateway.exchangeReply = models.Snapshot{Items: []models.ClothingItem{
		{ID: 7, Name: "jacket", Category: "jacket", Season: "winter", Material: "wool"},
		{ID: 7, Name: "boots", Category: "shoes", Season: "winter", Material: "leather"},
	}}

	err = f.sync.Reconcile(context.Background(), models.PullRemote)
	assert.ErrorIs(t, err, common.ErrorStorage)
	assert.Equal(t, models.SyncFailed, f.sync.Status())

	assert.Equal(t, "m1", f.marker(t), "marker unchanged after failed rewrite")

	after, err := items.NewSQLiteRepository(f.db).GetAll(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("rows changed by rolled-back rewrite (-before +after):\n%s", diff)
	}
}

func TestReconcile_SecondCallShortCircuits(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")
	f.gateway.profileMarker = "m2"
	f.gateway.exchangeMarker = "m2"

	require.NoError(t, f.sync.Reconcile(context.Background(), models.PullRemote))
	require.Equal(t, 1, f.gateway.exchangeCalls)

	// No remote-side change since: the marker now agrees.
	require.NoError(t, f.sync.Reconcile(context.Background(), models.PullRemote))
	assert.Equal(t, 1, f.gateway.exchangeCalls, "no second destructive rewrite")
}

func TestReconcile_ReplacesOutfitsToo(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")

	outfitRepo := outfits.NewSQLiteRepository(f.db)
	require.NoError(t, outfitRepo.Insert(context.Background(), &models.Outfit{Name: "old look"}))

	f.gateway.profileMarker = "m2"
	f.gateway.exchangeMarker = "m2"
	f.gateway.exchangeReply = models.Snapshot{
		Items:   []models.ClothingItem{{ID: 1, Name: "jacket", Category: "jacket", Season: "winter", Material: "wool"}},
		Outfits: []models.Outfit{{ID: 4, Name: "new look", ItemIDs: []int64{1}}},
	}

	require.NoError(t, f.sync.Reconcile(context.Background(), models.PullRemote))

	all, err := outfitRepo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "new look", all[0].Name)
	assert.Equal(t, []int64{1}, all[0].ItemIDs)
}

func TestLogout(t *testing.T) {
	f := newSyncFixture(t)
	f.seedCheckpoint(t, "m1")
	f.seedItem(t, &models.ClothingItem{Name: "shirt", Category: "shirt", Season: "summer", Material: "cotton"})

	require.NoError(t, f.sync.Logout(context.Background()))

	assert.Equal(t, models.SyncUnauthenticated, f.sync.Status())
	assert.Empty(t, f.itemNames(t))

	cp, err := checkpoint.NewSQLiteRepository(f.db).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, cp.Authenticated())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newSyncFixture(t)
	f.gateway.loginErr = common.ErrorUnauthorized

	err := f.sync.Login(context.Background(), "a@example.com", "wrong", models.PullRemote)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
	assert.Equal(t, models.SyncFailed, f.sync.Status(), "rejected fresh login is a failed attempt, not a lost session")
	assert.Zero(t, f.gateway.exchangeCalls)

	cp, loadErr := checkpoint.NewSQLiteRepository(f.db).Load(context.Background())
	require.NoError(t, loadErr)
	assert.False(t, cp.Authenticated(), "no credential stored after a rejected login")
}
