package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"ganeti-netbox-sync/core/config"
	"ganeti-netbox-sync/core/logger"
	"ganeti-netbox-sync/core/metrics"
	"ganeti-netbox-sync/core/reconcile"
	"ganeti-netbox-sync/core/storage"
	"ganeti-netbox-sync/feature/ganeti"
	"ganeti-netbox-sync/feature/netbox"
	"ganeti-netbox-sync/feature/sqlcatalog"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrBusy is returned when a live run is requested while another one is
// still applying.
var ErrBusy = errors.New("a sync run is already in progress")

// RunRequest describes one run.
type RunRequest struct {
	// Profile selects the cluster pair to synchronize.
	Profile string
	// DryRun plans and reports without mutating the catalog.
	DryRun bool
	// InputPath reads the instance list from a file or s3://bucket/key
	// instead of the cluster API.
	InputPath string
	// Workers overrides sync.workers when positive.
	Workers int
}

// Service runs reconciliations for the configured profiles.
type Service struct {
	cfg      *config.Config
	storage  storage.Client
	recorder *metrics.Recorder
	logger   *zap.Logger

	// base bounds runs started over HTTP; it is cancelled on shutdown.
	base context.Context

	// live is held for the whole apply phase of non dry runs.
	live sync.Mutex

	catMu   sync.Mutex
	catalog reconcile.Catalog
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog uses catalog instead of opening the configured backend.
func WithCatalog(catalog reconcile.Catalog) Option {
	return func(s *Service) { s.catalog = catalog }
}

// WithStorage enables reading instance snapshots from object storage.
func WithStorage(client storage.Client) Option {
	return func(s *Service) { s.storage = client }
}

// WithMetrics records every run on recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = recorder }
}

// WithBaseContext cancels HTTP-triggered runs when ctx is done.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Service) {
		if ctx != nil {
			s.base = ctx
		}
	}
}

// NewService creates a sync service.
func NewService(cfg *config.Config, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{cfg: cfg, logger: logger, base: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// runContext derives the context of a run from the caller's context that is
// also cancelled when the base context is done.
func (s *Service) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	if s.base.Err() != nil {
		cancel()
	}
	stop := context.AfterFunc(s.base, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Profiles returns the configured profiles sorted by name.
func (s *Service) Profiles() []config.Profile {
	profiles := lo.Values(s.cfg.Profiles)
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles
}

// Run performs one reconciliation. The returned error is fatal: no mutation
// was issued and no report exists. Per-record failures are in the report.
func (s *Service) Run(ctx context.Context, req RunRequest) (*Report, error) {
	profile, err := s.cfg.Profile(req.Profile)
	if err != nil {
		return nil, err
	}

	if !req.DryRun {
		if !s.live.TryLock() {
			return nil, ErrBusy
		}
		defer s.live.Unlock()
	}

	started := time.Now().UTC()
	report := newReport(uuid.NewString(), profile.Name, profile.Cluster, req.DryRun, started)
	l := logger.WithRun(s.logger, report.RunID, profile.Name)

	res, err := s.run(ctx, l, profile, req)
	elapsed := time.Since(started)
	if s.recorder != nil {
		s.recorder.ObserveRun(profile.Name, res, err, elapsed)
	}
	if err != nil {
		l.Error("Sync run failed", zap.Error(err))
		return nil, err
	}

	report.fill(res, elapsed)
	for _, dup := range report.Duplicates {
		l.Warn("Catalog record shares its name with another record and was not reconciled",
			zap.String("name", dup.Name),
			zap.Int("id", dup.ID),
		)
	}
	l.Info(report.Summary(), zap.Duration("duration", elapsed))
	return report, nil
}

func (s *Service) run(ctx context.Context, l *zap.Logger, profile config.Profile, req RunRequest) (*reconcile.Result, error) {
	records, err := s.loadSource(ctx, l, profile, req.InputPath)
	if err != nil {
		return nil, err
	}
	l.Info("Loaded instances", zap.Int("count", len(records)))

	catalog, err := s.openCatalog()
	if err != nil {
		return nil, err
	}

	workers := s.cfg.Sync.Workers
	if req.Workers > 0 {
		workers = req.Workers
	}

	r := reconcile.New(catalog, l, reconcile.Options{
		DryRun:       req.DryRun,
		Workers:      workers,
		PlatformSlug: s.cfg.Sync.PlatformSlug,
		RoleSlug:     s.cfg.Sync.RoleSlug,
	})
	return r.Reconcile(ctx, profile.Cluster, records)
}

func (s *Service) loadSource(ctx context.Context, l *zap.Logger, profile config.Profile, input string) ([]reconcile.SourceRecord, error) {
	if input != "" {
		l.Info("Loading instances from snapshot rather than the ganeti api", zap.String("location", input))
		return ganeti.Load(ctx, input, s.storage, l)
	}

	if profile.API == "" {
		return nil, fmt.Errorf("%w: profile %q has no api", reconcile.ErrSourceUnavailable, profile.Name)
	}
	client, err := ganeti.NewClient(profile.API, s.cfg.Ganeti, ganeti.Credentials{
		User:     s.cfg.Auth.GanetiUser,
		Password: s.cfg.Auth.GanetiPassword,
		CACert:   s.cfg.Auth.CACert,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", reconcile.ErrSourceUnavailable, err)
	}
	return client.Instances(ctx)
}

// openCatalog opens the configured backend once and reuses it across runs.
func (s *Service) openCatalog() (reconcile.Catalog, error) {
	s.catMu.Lock()
	defer s.catMu.Unlock()

	if s.catalog != nil {
		return s.catalog, nil
	}

	switch s.cfg.Sync.Catalog {
	case config.CatalogNetbox, "":
		client, err := netbox.NewClient(s.cfg.Netbox, s.cfg.Auth.NetboxToken, s.logger)
		if err != nil {
			return nil, err
		}
		s.catalog = netbox.NewCatalog(client)
	case config.CatalogSQL:
		store, err := sqlcatalog.Open(s.cfg.Database, s.logger)
		if err != nil {
			return nil, err
		}
		if err := store.Verify(); err != nil {
			return nil, err
		}
		s.catalog = store
	default:
		return nil, fmt.Errorf("unsupported catalog %q", s.cfg.Sync.Catalog)
	}

	s.logger.Info("Opened catalog", zap.String("catalog", lo.CoalesceOrEmpty(s.cfg.Sync.Catalog, config.CatalogNetbox)))
	return s.catalog, nil
}
