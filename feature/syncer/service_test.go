package syncer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ganeti-netbox-sync/core/config"
	"ganeti-netbox-sync/core/database"
	"ganeti-netbox-sync/core/metrics"
	"ganeti-netbox-sync/core/reconcile"
	"ganeti-netbox-sync/feature/sqlcatalog"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const instances = `[
  {"name": "vm1.example.org", "beparams": {"vcpus": 2, "memory": 2048}, "disk.sizes": [10240]},
  {"name": "vm2.example.org", "beparams": {"vcpus": 1, "memory": 1024}, "disk.sizes": []}
]`

func newGanetiServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rapi" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(instances))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func seed(t *testing.T, s *sqlcatalog.Store) {
	t.Helper()
	db := s.DB()
	require.NoError(t, db.Create(&sqlcatalog.Platform{ID: 1, Name: "Linux", Slug: "linux"}).Error)
	require.NoError(t, db.Create(&sqlcatalog.DeviceRole{ID: 2, Name: "Server", Slug: "server"}).Error)
	require.NoError(t, db.Create(&sqlcatalog.Cluster{ID: 3, Name: "ganeti-test"}).Error)
	require.NoError(t, db.Create(&sqlcatalog.VirtualMachine{
		Name: "stale", ClusterID: 3, VCPUs: lo.ToPtr(1), Memory: lo.ToPtr(512), Disk: lo.ToPtr(1),
	}).Error)
}

func setupStore(t *testing.T) *sqlcatalog.Store {
	t.Helper()
	s, err := sqlcatalog.Open(database.Config{Driver: database.DriverSQLite, Name: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	seed(t, s)
	return s
}

func testConfig(api string) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{GanetiUser: "rapi", GanetiPassword: "secret"},
		Sync: config.SyncConfig{Catalog: config.CatalogSQL, PlatformSlug: "linux", RoleSlug: "server", Workers: 1},
		Profiles: map[string]config.Profile{
			"test":    {Name: "test", Cluster: "ganeti-test", API: api},
			"nowhere": {Name: "nowhere", Cluster: "ganeti-nowhere", API: api},
			"offline": {Name: "offline", Cluster: "ganeti-test"},
		},
	}
}

func vmNames(t *testing.T, s *sqlcatalog.Store) []string {
	t.Helper()
	var names []string
	require.NoError(t, s.DB().Model(&sqlcatalog.VirtualMachine{}).Order("name").Pluck("name", &names).Error)
	return names
}

func TestService_RunFromAPI(t *testing.T) {
	srv := newGanetiServer(t, http.StatusOK)
	store := setupStore(t)
	recorder := metrics.New()
	svc := NewService(testConfig(srv.URL), zap.NewNop(), WithCatalog(store), WithMetrics(recorder))

	report, err := svc.Run(context.Background(), RunRequest{Profile: "test"})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "ganeti-test", report.Cluster)
	assert.False(t, report.DryRun)
	assert.Equal(t, reconcile.Counters{Deleted: 1, Created: 2}, report.Counters)
	assert.Equal(t, []string{"stale"}, report.ChangeSet.ToDelete)
	assert.Empty(t, report.Failures)
	assert.Equal(t, []string{"vm1", "vm2"}, vmNames(t, store))

	count, err := testutil.GatherAndCount(recorder.Registry(), "ganeti_netbox_sync_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A second run has nothing left to do
	report, err = svc.Run(context.Background(), RunRequest{Profile: "test", Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Counters.Total())
}

func TestService_DryRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.json")
	require.NoError(t, os.WriteFile(path, []byte(instances), 0o644))

	store := setupStore(t)
	svc := NewService(testConfig(""), zap.NewNop(), WithCatalog(store))

	report, err := svc.Run(context.Background(), RunRequest{Profile: "offline", DryRun: true, InputPath: path})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, reconcile.Counters{Deleted: 1, Created: 2}, report.Counters)
	assert.Equal(t, []string{"stale"}, vmNames(t, store))
	assert.Equal(t, "[dry run] would have removed 1, updated 0, added 2 instances", report.Summary())
}

func TestService_ReportsDuplicateCatalogNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.json")
	require.NoError(t, os.WriteFile(path, []byte(instances), 0o644))

	store := setupStore(t)
	first := &sqlcatalog.VirtualMachine{Name: "vm1", ClusterID: 3, VCPUs: lo.ToPtr(1), Memory: lo.ToPtr(512), Disk: lo.ToPtr(1)}
	require.NoError(t, store.DB().Create(first).Error)
	require.NoError(t, store.DB().Create(&sqlcatalog.VirtualMachine{
		Name: "vm1", ClusterID: 3, VCPUs: lo.ToPtr(2), Memory: lo.ToPtr(2048), Disk: lo.ToPtr(10),
	}).Error)

	svc := NewService(testConfig(""), zap.NewNop(), WithCatalog(store))
	report, err := svc.Run(context.Background(), RunRequest{Profile: "offline", DryRun: true, InputPath: path})
	require.NoError(t, err)

	assert.Equal(t, reconcile.Counters{Deleted: 1, Created: 1}, report.Counters)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, first.ID, report.Duplicates[0].ID)
	assert.Equal(t, "[dry run] would have removed 1, updated 0, added 1 instances, 1 duplicate catalog records ignored", report.Summary())
}

func TestService_FatalErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownProfile", func(t *testing.T) {
		svc := NewService(testConfig(""), zap.NewNop(), WithCatalog(setupStore(t)))
		_, err := svc.Run(ctx, RunRequest{Profile: "missing"})
		assert.ErrorIs(t, err, config.ErrUnknownProfile)
	})

	t.Run("SourceDown", func(t *testing.T) {
		srv := newGanetiServer(t, http.StatusServiceUnavailable)
		store := setupStore(t)
		recorder := metrics.New()
		svc := NewService(testConfig(srv.URL), zap.NewNop(), WithCatalog(store), WithMetrics(recorder))

		_, err := svc.Run(ctx, RunRequest{Profile: "test"})
		assert.ErrorIs(t, err, reconcile.ErrSourceUnavailable)
		assert.Equal(t, []string{"stale"}, vmNames(t, store))

		count, err := testutil.GatherAndCount(recorder.Registry(), "ganeti_netbox_sync_runs_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("NoAPI", func(t *testing.T) {
		svc := NewService(testConfig(""), zap.NewNop(), WithCatalog(setupStore(t)))
		_, err := svc.Run(ctx, RunRequest{Profile: "offline"})
		assert.ErrorIs(t, err, reconcile.ErrSourceUnavailable)
	})

	t.Run("MissingSnapshot", func(t *testing.T) {
		svc := NewService(testConfig(""), zap.NewNop(), WithCatalog(setupStore(t)))
		_, err := svc.Run(ctx, RunRequest{Profile: "offline", InputPath: filepath.Join(t.TempDir(), "nope.json")})
		assert.ErrorIs(t, err, reconcile.ErrSourceUnavailable)
	})

	t.Run("UnknownCluster", func(t *testing.T) {
		srv := newGanetiServer(t, http.StatusOK)
		store := setupStore(t)
		svc := NewService(testConfig(srv.URL), zap.NewNop(), WithCatalog(store))
		_, err := svc.Run(ctx, RunRequest{Profile: "nowhere"})
		assert.ErrorIs(t, err, reconcile.ErrDefaultsUnresolved)
		assert.Equal(t, []string{"stale"}, vmNames(t, store))
	})
}

func TestService_LiveRunsAreExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instances.json")
	require.NoError(t, os.WriteFile(path, []byte(instances), 0o644))

	svc := NewService(testConfig(""), zap.NewNop(), WithCatalog(setupStore(t)))
	svc.live.Lock()
	defer svc.live.Unlock()

	_, err := svc.Run(context.Background(), RunRequest{Profile: "offline", InputPath: path})
	assert.ErrorIs(t, err, ErrBusy)

	_, err = svc.Run(context.Background(), RunRequest{Profile: "offline", InputPath: path, DryRun: true})
	assert.NoError(t, err)
}

func TestService_OpenCatalog(t *testing.T) {
	t.Run("SQL", func(t *testing.T) {
		dir := t.TempDir()
		dbCfg := database.Config{Driver: database.DriverSQLite, Name: filepath.Join(dir, "inventory.db")}
		store, err := sqlcatalog.Open(dbCfg, zap.NewNop())
		require.NoError(t, err)
		seed(t, store)

		path := filepath.Join(dir, "instances.json")
		require.NoError(t, os.WriteFile(path, []byte(instances), 0o644))

		cfg := testConfig("")
		cfg.Database = dbCfg
		svc := NewService(cfg, zap.NewNop())

		report, err := svc.Run(context.Background(), RunRequest{Profile: "offline", InputPath: path})
		require.NoError(t, err)
		assert.Equal(t, reconcile.Counters{Deleted: 1, Created: 2}, report.Counters)
		assert.Equal(t, []string{"vm1", "vm2"}, vmNames(t, store))
	})

	t.Run("NetboxWithoutAPI", func(t *testing.T) {
		cfg := testConfig("")
		cfg.Sync.Catalog = config.CatalogNetbox
		_, err := NewService(cfg, zap.NewNop()).openCatalog()
		assert.Error(t, err)
	})

	t.Run("Unsupported", func(t *testing.T) {
		cfg := testConfig("")
		cfg.Sync.Catalog = "ldap"
		_, err := NewService(cfg, zap.NewNop()).openCatalog()
		assert.ErrorContains(t, err, "unsupported catalog")
	})
}

func TestService_Profiles(t *testing.T) {
	svc := NewService(testConfig(""), nil)
	names := lo.Map(svc.Profiles(), func(p config.Profile, _ int) string { return p.Name })
	assert.Equal(t, []string{"nowhere", "offline", "test"}, names)
}
