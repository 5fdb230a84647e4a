package sqlcatalog

import "time"

// Platform is a row of the platforms table.
type Platform struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
	Slug string `gorm:"size:100;uniqueIndex"`
}

// DeviceRole is a row of the device_roles table.
type DeviceRole struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
	Slug string `gorm:"size:100;uniqueIndex"`
}

// Cluster is a row of the clusters table.
type Cluster struct {
	ID   int    `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex"`
}

// VirtualMachine is a row of the virtual_machines table.
// Nullable columns map to nil target fields.
type VirtualMachine struct {
	ID         int    `gorm:"primaryKey"`
	Name       string `gorm:"size:64;index"`
	ClusterID  int    `gorm:"index"`
	PlatformID *int
	RoleID     *int
	VCPUs      *int `gorm:"column:vcpus"`
	Memory     *int
	Disk       *int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// requiredColumns lists the columns the catalog reads or writes, per table.
var requiredColumns = map[string][]string{
	"platforms":        {"id", "slug"},
	"device_roles":     {"id", "slug"},
	"clusters":         {"id", "name"},
	"virtual_machines": {"id", "name", "cluster_id", "platform_id", "role_id", "vcpus", "memory", "disk"},
}
