package sqlcatalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"ganeti-netbox-sync/core/database"
	"ganeti-netbox-sync/core/reconcile"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSchemaMismatch is returned by Verify when a required column is missing.
var ErrSchemaMismatch = errors.New("inventory schema mismatch")

// Store implements reconcile.Catalog over a relational inventory.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ reconcile.Catalog = (*Store)(nil)

// New wraps an open connection. The schema is expected to exist.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Open connects to the configured database and migrates the schema.
func Open(cfg database.Config, logger *zap.Logger) (*Store, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	s := New(db, logger)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate creates or extends the inventory tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Platform{}, &DeviceRole{}, &Cluster{}, &VirtualMachine{}); err != nil {
		return fmt.Errorf("failed to migrate inventory schema: %w", err)
	}
	return nil
}

// Verify checks that every table carries the columns the catalog uses.
func (s *Store) Verify() error {
	tables := lo.Keys(requiredColumns)
	sort.Strings(tables)

	var problems []string
	for _, table := range tables {
		missing, err := database.MissingColumns(s.db, table, requiredColumns[table])
		if err != nil {
			return err
		}
		for _, col := range missing {
			problems = append(problems, table+"."+col)
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: missing columns %v", ErrSchemaMismatch, problems)
	}
	return nil
}

// DB exposes the connection, mainly for seeding.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// PlatformBySlug returns the platform id for slug.
func (s *Store) PlatformBySlug(ctx context.Context, slug string) (int, error) {
	var p Platform
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return 0, fmt.Errorf("platform %q: %w", slug, err)
	}
	return p.ID, nil
}

// RoleBySlug returns the device role id for slug.
func (s *Store) RoleBySlug(ctx context.Context, slug string) (int, error) {
	var r DeviceRole
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&r).Error; err != nil {
		return 0, fmt.Errorf("role %q: %w", slug, err)
	}
	return r.ID, nil
}

// ClusterByName returns the cluster id for name.
func (s *Store) ClusterByName(ctx context.Context, name string) (int, error) {
	var c Cluster
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return 0, fmt.Errorf("cluster %q: %w", name, err)
	}
	return c.ID, nil
}

// ListVirtualMachines returns every virtual machine of the cluster.
func (s *Store) ListVirtualMachines(ctx context.Context, clusterID int) ([]reconcile.TargetRecord, error) {
	var rows []VirtualMachine
	if err := s.db.WithContext(ctx).Where("cluster_id = ?", clusterID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list virtual machines: %w", err)
	}

	return lo.Map(rows, func(vm VirtualMachine, _ int) reconcile.TargetRecord {
		return reconcile.TargetRecord{ID: vm.ID, Name: vm.Name, VCPUs: vm.VCPUs, Memory: vm.Memory, Disk: vm.Disk}
	}), nil
}

// DeleteVirtualMachine deletes the row with id.
func (s *Store) DeleteVirtualMachine(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&VirtualMachine{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete virtual machine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("virtual machine %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// UpdateVirtualMachine writes only the changed columns.
func (s *Store) UpdateVirtualMachine(ctx context.Context, id int, changes []reconcile.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	columns := lo.SliceToMap(changes, func(ch reconcile.FieldChange) (string, any) {
		return ch.Field, ch.To
	})

	res := s.db.WithContext(ctx).Model(&VirtualMachine{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("failed to update virtual machine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("virtual machine %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// CreateVirtualMachine inserts a row with the run defaults.
func (s *Store) CreateVirtualMachine(ctx context.Context, req reconcile.CreateRequest) (int, error) {
	vm := VirtualMachine{
		Name:       req.Name,
		ClusterID:  req.ClusterID,
		PlatformID: lo.ToPtr(req.PlatformID),
		RoleID:     lo.ToPtr(req.RoleID),
		VCPUs:      lo.ToPtr(req.VCPUs),
		Memory:     lo.ToPtr(req.Memory),
		Disk:       lo.ToPtr(req.Disk),
	}
	if err := s.db.WithContext(ctx).Create(&vm).Error; err != nil {
		return 0, fmt.Errorf("failed to create virtual machine %s: %w", req.Name, err)
	}
	s.logger.Debug("Inserted virtual machine", zap.String("name", vm.Name), zap.Int("id", vm.ID))
	return vm.ID, nil
}
