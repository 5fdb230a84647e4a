package reconcile

import (
	"context"
)

// Catalog is the downstream inventory the reconciler keeps in sync.
// Implementations exist for the NetBox REST API and for a SQL inventory.
type Catalog interface {
	// PlatformBySlug returns the identity of the platform with the given slug.
	PlatformBySlug(ctx context.Context, slug string) (int, error)

	// RoleBySlug returns the identity of the role with the given slug.
	RoleBySlug(ctx context.Context, slug string) (int, error)

	// ClusterByName returns the identity of the named cluster.
	ClusterByName(ctx context.Context, name string) (int, error)

	// ListVirtualMachines returns every virtual machine associated with the cluster.
	ListVirtualMachines(ctx context.Context, clusterID int) ([]TargetRecord, error)

	// DeleteVirtualMachine removes the virtual machine with the given identity.
	DeleteVirtualMachine(ctx context.Context, id int) error

	// UpdateVirtualMachine writes only the given fields to the virtual machine.
	UpdateVirtualMachine(ctx context.Context, id int, changes []FieldChange) error

	// CreateVirtualMachine creates a virtual machine and returns its identity.
	CreateVirtualMachine(ctx context.Context, req CreateRequest) (int, error)
}
