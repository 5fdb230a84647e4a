package reconcile

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memCatalog is an in-memory Catalog recording every mutating call.
type memCatalog struct {
	mu        sync.Mutex
	platforms map[string]int
	roles     map[string]int
	clusters  map[string]int
	vms       map[int]vmRow
	nextID    int

	// failOn makes mutations for the given names return an error.
	failOn map[string]error
	// listErr makes ListVirtualMachines fail.
	listErr error

	deletes []int
	updates []int
	creates []string
}

type vmRow struct {
	TargetRecord
	ClusterID  int
	PlatformID int
	RoleID     int
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		platforms: map[string]int{"linux": 1},
		roles:     map[string]int{"server": 2},
		clusters:  map[string]int{"cluster-x": 3},
		vms:       map[int]vmRow{},
		nextID:    100,
		failOn:    map[string]error{},
	}
}

func (m *memCatalog) PlatformBySlug(_ context.Context, slug string) (int, error) {
	if id, ok := m.platforms[slug]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("platform %s not found", slug)
}

func (m *memCatalog) RoleBySlug(_ context.Context, slug string) (int, error) {
	if id, ok := m.roles[slug]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("role %s not found", slug)
}

func (m *memCatalog) ClusterByName(_ context.Context, name string) (int, error) {
	if id, ok := m.clusters[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("cluster %s not found", name)
}

func (m *memCatalog) ListVirtualMachines(_ context.Context, clusterID int) ([]TargetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []TargetRecord
	for _, vm := range m.vms {
		if vm.ClusterID == clusterID {
			out = append(out, vm.TargetRecord)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCatalog) DeleteVirtualMachine(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	vm, ok := m.vms[id]
	if !ok {
		return fmt.Errorf("vm %d not found", id)
	}
	if err := m.failOn[vm.Name]; err != nil {
		return err
	}
	delete(m.vms, id)
	return nil
}

func (m *memCatalog) UpdateVirtualMachine(_ context.Context, id int, changes []FieldChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, id)
	vm, ok := m.vms[id]
	if !ok {
		return fmt.Errorf("vm %d not found", id)
	}
	if err := m.failOn[vm.Name]; err != nil {
		return err
	}
	for _, c := range changes {
		v := c.To
		switch c.Field {
		case FieldVCPUs:
			vm.VCPUs = &v
		case FieldMemory:
			vm.Memory = &v
		case FieldDisk:
			vm.Disk = &v
		}
	}
	m.vms[id] = vm
	return nil
}

func (m *memCatalog) CreateVirtualMachine(_ context.Context, req CreateRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates = append(m.creates, req.Name)
	if err := m.failOn[req.Name]; err != nil {
		return 0, err
	}
	id := m.nextID
	m.nextID++
	vcpus, memory, disk := req.VCPUs, req.Memory, req.Disk
	m.vms[id] = vmRow{
		TargetRecord: TargetRecord{ID: id, Name: req.Name, VCPUs: &vcpus, Memory: &memory, Disk: &disk},
		ClusterID:    req.ClusterID,
		PlatformID:   req.PlatformID,
		RoleID:       req.RoleID,
	}
	return id, nil
}

func (m *memCatalog) mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deletes) + len(m.updates) + len(m.creates)
}

func (m *memCatalog) seed(name string, vcpus, memory, disk int) int {
	id := m.nextID
	m.nextID++
	m.vms[id] = vmRow{
		TargetRecord: TargetRecord{ID: id, Name: name, VCPUs: &vcpus, Memory: &memory, Disk: &disk},
		ClusterID:    m.clusters["cluster-x"],
	}
	return id
}

func (m *memCatalog) byName(name string) (vmRow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, vm := range m.vms {
		if vm.Name == name {
			return vm, true
		}
	}
	return vmRow{}, false
}

func intp(v int) *int { return &v }

func src(name string, vcpus, memory int, disks ...int) SourceRecord {
	if disks == nil {
		disks = []int{}
	}
	return SourceRecord{Name: name, VCPUs: intp(vcpus), Memory: intp(memory), DiskSizes: disks}
}
