package providers

import (
	"context"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretshows/secretshows-server/internal/config"
	"github.com/secretshows/secretshows-server/internal/id"
	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/search"
)

func newTestInjector(t *testing.T, driver string) *do.RootScope {
	t.Helper()

	cfg := &config.Config{
		App:  config.AppConfig{Environment: "development"},
		Data: config.DataConfig{BasePath: t.TempDir(), StorageDriver: driver},
		Session: config.SessionConfig{
			IdleTTL:       time.Hour,
			AuthRateLimit: 20,
		},
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger.Discard())
	do.Provide(injector, ProvideMetrics)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideCatalog)
	do.Provide(injector, ProvideSearchIndex)
	do.Provide(injector, ProvideSessionManager)

	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector
}

func TestProvideStore_Drivers(t *testing.T) {
	for _, driver := range []string{config.StorageMemory, config.StorageSQLite, config.StorageBadger} {
		t.Run(driver, func(t *testing.T) {
			injector := newTestInjector(t, driver)

			handle, err := do.Invoke[*StoreHandle](injector)
			require.NoError(t, err)
			require.NotNil(t, handle.Factory)

			if driver == config.StorageMemory {
				assert.Nil(t, handle.Database)
			} else {
				require.NotNil(t, handle.Database)
				assert.NoError(t, handle.Database.Ping(context.Background()))
			}

			repo, err := handle.Factory(context.Background(), id.NewProfile())
			require.NoError(t, err)
			snap, err := repo.Load(context.Background())
			require.NoError(t, err)
			assert.Nil(t, snap.User)
		})
	}
}

func TestProvideSessionManager_PersistsThroughStore(t *testing.T) {
	injector := newTestInjector(t, config.StorageSQLite)
	ctx := context.Background()
	profileID := id.NewProfile()

	manager, err := do.Invoke[*SessionManagerHandle](injector)
	require.NoError(t, err)

	st, err := manager.Get(ctx, profileID)
	require.NoError(t, err)
	_, err = st.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)

	// A fresh store for the same profile reads it back from storage.
	storeHandle := do.MustInvoke[*StoreHandle](injector)
	repo, err := storeHandle.Factory(ctx, profileID)
	require.NoError(t, err)
	snap, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.User)
	assert.Equal(t, "ada@example.com", snap.User.Email)
}

func TestProvideSearchIndex_FollowsCatalog(t *testing.T) {
	injector := newTestInjector(t, config.StorageMemory)

	index, err := do.Invoke[*SearchIndexHandle](injector)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.NotZero(t, count)

	result, err := index.Search(context.Background(), search.SearchParams{Query: "luna"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Hits)
}

func TestProvideMetrics_ExposesSessionGauge(t *testing.T) {
	injector := newTestInjector(t, config.StorageMemory)
	_ = do.MustInvoke[*SessionManagerHandle](injector)
	m := do.MustInvoke[*MetricsHandle](injector)

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "secretshows_sessions_active")
	assert.Contains(t, names, "go_goroutines")
}
