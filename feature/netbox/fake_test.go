package netbox

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"ganeti-netbox-sync/core/config"
)

// fakeNetbox serves the endpoints the catalog uses from memory.
type fakeNetbox struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	vms      map[int]map[string]any
	nextID   int
	requests []string
	bodies   []map[string]any
	token    string
}

func newFakeNetbox(t *testing.T) *fakeNetbox {
	f := &fakeNetbox{t: t, vms: map[int]map[string]any{}, nextID: 1000, token: "rw-token"}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeNetbox) client(t *testing.T) *Client {
	c, err := NewClient(config.NetboxConfig{API: f.srv.URL, PageSize: 2}, f.token, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func (f *fakeNetbox) addVM(name string, cluster int, vcpus any, memory, disk int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.vms[id] = map[string]any{
		"id": id, "name": name, "vcpus": vcpus, "memory": memory, "disk": disk,
		"cluster": map[string]any{"id": cluster, "name": "ganeti-test"},
	}
	return id
}

func (f *fakeNetbox) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if r.Header.Get("Authorization") != "Token "+f.token {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Invalid token"}`))
		return
	}

	q := r.URL.Query()
	switch {
	case r.URL.Path == PlatformsPath:
		f.lookup(w, q.Get("slug") == "linux", 1)
	case r.URL.Path == DeviceRolesPath:
		f.lookup(w, q.Get("slug") == "server", 2)
	case r.URL.Path == ClustersPath:
		f.lookup(w, q.Get("name") == "ganeti-test", 3)
	case r.URL.Path == VirtualMachinesPath && r.Method == http.MethodGet:
		f.listVMs(w, r)
	case r.URL.Path == VirtualMachinesPath && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.bodies = append(f.bodies, body)
		if body["name"] == "rejected" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"name":["invalid"]}`))
			return
		}
		id := f.nextID
		f.nextID++
		stored := map[string]any{"id": id}
		for k, v := range body {
			stored[k] = v
		}
		f.vms[id] = stored
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(stored)
	case strings.HasPrefix(r.URL.Path, VirtualMachinesPath):
		id, _ := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, VirtualMachinesPath), "/"))
		vm, ok := f.vms[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
			return
		}
		switch r.Method {
		case http.MethodDelete:
			delete(f.vms, id)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPatch:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.bodies = append(f.bodies, body)
			for k, v := range body {
				vm[k] = v
			}
			_ = json.NewEncoder(w).Encode(vm)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeNetbox) lookup(w http.ResponseWriter, found bool, id int) {
	results := []any{}
	if found {
		results = append(results, map[string]any{"id": id})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"count": len(results), "next": nil, "results": results})
}

func (f *fakeNetbox) listVMs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cluster, _ := strconv.Atoi(q.Get("cluster_id"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	var ids []int
	for id, vm := range f.vms {
		if clusterOf(vm) == cluster {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	results := []any{}
	for _, id := range ids[offset:end] {
		results = append(results, f.vms[id])
	}

	var next any
	if end < len(ids) {
		next = fmt.Sprintf("%s%s?cluster_id=%d&limit=%d&offset=%d", f.srv.URL, VirtualMachinesPath, cluster, limit, end)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"count": len(ids), "next": next, "results": results})
}

func (f *fakeNetbox) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// clusterOf reads the cluster id of a stored vm: nested for seeded rows,
// a bare number for rows created through the API.
func clusterOf(vm map[string]any) int {
	switch c := vm["cluster"].(type) {
	case map[string]any:
		id, _ := c["id"].(int)
		return id
	case float64:
		return int(c)
	}
	return -1
}
