package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Kind selects how the rows of a table are produced.
type Kind string

const (
	// KindGeneric dumps the objects with custom fields dropped.
	KindGeneric Kind = "generic"
	// KindCustomFields dumps only the custom fields of each object.
	KindCustomFields Kind = "custom_fields"
	// KindDevicesFull dumps devices with their references resolved to slugs.
	KindDevicesFull Kind = "devices_full"
)

// Table is one dumpable table.
type Table struct {
	// Name is the dotted API name (e.g. dcim.rack_groups), used as file name.
	Name string
	// Path is the REST list endpoint.
	Path string
	Kind Kind
}

const (
	customFieldsSuffix = ".custom_fields"
	devicesFull        = "devices_full"
)

// AllTables is the set dumped by "all".
var AllTables = []string{
	"circuits.circuit_types",
	"circuits.circuits",
	"circuits.providers",
	"dcim.cables",
	"dcim.device_roles",
	"dcim.device_types",
	"dcim.devices",
	"dcim.devices.custom_fields",
	"dcim.inventory_items",
	"dcim.manufacturers",
	"dcim.platforms",
	"dcim.rack_groups",
	"dcim.racks",
	"dcim.regions",
	"dcim.sites",
	devicesFull,
	"ipam.aggregates",
	"ipam.ip_addresses",
	"ipam.prefixes",
	"ipam.rirs",
	"ipam.vlan_groups",
	"ipam.vlans",
	"tenancy.tenants",
	"virtualization.cluster_groups",
	"virtualization.cluster_types",
	"virtualization.clusters",
	"virtualization.virtual_machines",
	"virtualization.virtual_machines.custom_fields",
}

// Aliases are short names accepted on the command line.
var Aliases = map[string]string{
	"devices_custom_fields":          "dcim.devices.custom_fields",
	"virtual_machines_custom_fields": "virtualization.virtual_machines.custom_fields",
}

var known = lo.SliceToMap(AllTables, func(name string) (string, struct{}) {
	return name, struct{}{}
})

// Lookup returns the table for a name or alias.
func Lookup(name string) (Table, error) {
	if full, ok := Aliases[name]; ok {
		name = full
	}
	if _, ok := known[name]; !ok {
		return Table{}, fmt.Errorf("unknown table %q", name)
	}

	switch {
	case name == devicesFull:
		return Table{Name: name, Path: "/api/dcim/devices/", Kind: KindDevicesFull}, nil
	case strings.HasSuffix(name, customFieldsSuffix):
		return Table{Name: name, Path: apiPath(strings.TrimSuffix(name, customFieldsSuffix)), Kind: KindCustomFields}, nil
	default:
		return Table{Name: name, Path: apiPath(name), Kind: KindGeneric}, nil
	}
}

// Resolve turns command line names into tables. "all" selects AllTables.
// Duplicates collapse and every name is checked before anything is fetched.
func Resolve(names []string) ([]Table, error) {
	if lo.Contains(names, "all") {
		names = AllTables
	}

	var tables []Table
	seen := make(map[string]struct{})
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		t, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[t.Name]; dup {
			continue
		}
		seen[t.Name] = struct{}{}
		tables = append(tables, t)
	}

	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

// apiPath maps dcim.rack_groups to /api/dcim/rack-groups/.
func apiPath(name string) string {
	app, endpoint, _ := strings.Cut(name, ".")
	return "/api/" + app + "/" + strings.ReplaceAll(endpoint, "_", "-") + "/"
}
