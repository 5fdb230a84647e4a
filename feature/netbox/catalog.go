package netbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ganeti-netbox-sync/core/reconcile"
	"ganeti-netbox-sync/core/utils"

	"github.com/samber/lo"
)

// API paths used by the catalog.
const (
	PlatformsPath       = "/api/dcim/platforms/"
	DeviceRolesPath     = "/api/dcim/device-roles/"
	ClustersPath        = "/api/virtualization/clusters/"
	VirtualMachinesPath = "/api/virtualization/virtual-machines/"
)

// Catalog implements reconcile.Catalog against the NetBox REST API.
type Catalog struct {
	client *Client
}

// NewCatalog wraps a client as a reconcile catalog.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

var _ reconcile.Catalog = (*Catalog)(nil)

// virtualMachine is the part of a NetBox virtual machine the sync reads.
// Numeric fields stay loosely typed: vcpus is a decimal in NetBox.
type virtualMachine struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	VCPUs  any    `json:"vcpus"`
	Memory any    `json:"memory"`
	Disk   any    `json:"disk"`
}

// PlatformBySlug returns the platform id for slug.
func (c *Catalog) PlatformBySlug(ctx context.Context, slug string) (int, error) {
	return c.lookup(ctx, PlatformsPath, "slug", slug)
}

// RoleBySlug returns the device role id for slug.
func (c *Catalog) RoleBySlug(ctx context.Context, slug string) (int, error) {
	return c.lookup(ctx, DeviceRolesPath, "slug", slug)
}

// ClusterByName returns the cluster id for name.
func (c *Catalog) ClusterByName(ctx context.Context, name string) (int, error) {
	return c.lookup(ctx, ClustersPath, "name", name)
}

func (c *Catalog) lookup(ctx context.Context, path, field, value string) (int, error) {
	var p page
	if err := c.client.Do(ctx, http.MethodGet, path, url.Values{field: {value}}, nil, &p); err != nil {
		return 0, err
	}

	switch len(p.Results) {
	case 0:
		return 0, fmt.Errorf("%s %s=%q: %w", path, field, value, ErrNotFound)
	case 1:
	default:
		return 0, fmt.Errorf("%s %s=%q: %d objects match", path, field, value, len(p.Results))
	}

	var obj struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(p.Results[0], &obj); err != nil {
		return 0, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return obj.ID, nil
}

// ListVirtualMachines returns every virtual machine of the cluster.
func (c *Catalog) ListVirtualMachines(ctx context.Context, clusterID int) ([]reconcile.TargetRecord, error) {
	raw, err := c.client.ListRaw(ctx, VirtualMachinesPath, url.Values{"cluster_id": {strconv.Itoa(clusterID)}})
	if err != nil {
		return nil, err
	}

	records := make([]reconcile.TargetRecord, 0, len(raw))
	for _, r := range raw {
		var vm virtualMachine
		if err := json.Unmarshal(r, &vm); err != nil {
			return nil, fmt.Errorf("failed to decode virtual machine: %w", err)
		}
		records = append(records, reconcile.TargetRecord{
			ID:     vm.ID,
			Name:   vm.Name,
			VCPUs:  utils.IntPtr(vm.VCPUs),
			Memory: utils.IntPtr(vm.Memory),
			Disk:   utils.IntPtr(vm.Disk),
		})
	}
	return records, nil
}

// DeleteVirtualMachine deletes the virtual machine with id.
func (c *Catalog) DeleteVirtualMachine(ctx context.Context, id int) error {
	return c.client.Do(ctx, http.MethodDelete, vmPath(id), nil, nil, nil)
}

// UpdateVirtualMachine patches only the changed fields.
func (c *Catalog) UpdateVirtualMachine(ctx context.Context, id int, changes []reconcile.FieldChange) error {
	if len(changes) == 0 {
		return nil
	}
	patch := lo.SliceToMap(changes, func(ch reconcile.FieldChange) (string, int) {
		return ch.Field, ch.To
	})
	return c.client.Do(ctx, http.MethodPatch, vmPath(id), nil, patch, nil)
}

// CreateVirtualMachine creates a virtual machine with the run defaults.
func (c *Catalog) CreateVirtualMachine(ctx context.Context, req reconcile.CreateRequest) (int, error) {
	body := map[string]any{
		"name":     req.Name,
		"vcpus":    req.VCPUs,
		"memory":   req.Memory,
		"disk":     req.Disk,
		"cluster":  req.ClusterID,
		"platform": req.PlatformID,
		"role":     req.RoleID,
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := c.client.Do(ctx, http.MethodPost, VirtualMachinesPath, nil, body, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func vmPath(id int) string {
	return VirtualMachinesPath + strconv.Itoa(id) + "/"
}
