package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"ganeti-netbox-sync/core/config"
	"ganeti-netbox-sync/core/reconcile"
	"ganeti-netbox-sync/feature/ganeti"
	"ganeti-netbox-sync/feature/netbox"
	"ganeti-netbox-sync/feature/sqlcatalog"

	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("c", config.DefaultFile, "config file")
	profileName := flag.String("p", "", "profile")
	input := flag.String("i", "", "captured instance list (JSON)")
	key := flag.String("k", "", "only show this instance key")
	flag.Parse()

	if *profileName == "" || *input == "" {
		log.Fatal("usage: debug_plan -p <profile> -i <instances.json> [-c config] [-k key]")
	}

	// Load config
	cfg, err := config.LoadConfig(*configFile, true)
	if err != nil {
		log.Fatal(err)
	}
	profile, err := cfg.Profile(*profileName)
	if err != nil {
		log.Fatal(err)
	}

	// Open catalog
	var catalog reconcile.Catalog
	switch cfg.Sync.Catalog {
	case config.CatalogSQL:
		store, err := sqlcatalog.Open(cfg.Database, zap.NewNop())
		if err != nil {
			log.Fatal(err)
		}
		catalog = store
	default:
		client, err := netbox.NewClient(cfg.Netbox, cfg.Auth.NetboxToken, zap.NewNop())
		if err != nil {
			log.Fatal(err)
		}
		catalog = netbox.NewCatalog(client)
	}

	ctx := context.Background()

	// Test 1: Source
	fmt.Println("=== TEST 1: Source Loading ===")
	records, err := ganeti.LoadFile(*input, zap.NewNop())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Total instances loaded: %d\n", len(records))
	for _, rec := range records {
		if _, err := reconcile.Normalize(rec); err != nil {
			fmt.Printf("MALFORMED: %q: %v\n", rec.Name, err)
		}
	}

	// Test 2: Plan
	fmt.Println("\n=== TEST 2: Plan ===")
	r := reconcile.New(catalog, zap.NewNop(), reconcile.Options{
		DryRun:       true,
		PlatformSlug: cfg.Sync.PlatformSlug,
		RoleSlug:     cfg.Sync.RoleSlug,
	})
	cs, source, target, defaults, err := r.Plan(ctx, profile.Cluster, records)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Defaults: cluster=%d platform=%d role=%d\n", defaults.ClusterID, defaults.PlatformID, defaults.RoleID)
	fmt.Printf("Source keys: %d, catalog keys: %d\n", len(source), len(target))
	fmt.Printf("To delete: %d, to update: %d, to create: %d\n", len(cs.ToDelete), len(cs.ToUpdate), len(cs.ToCreate))

	// Test 3: Details
	fmt.Println("\n=== TEST 3: Details ===")
	show := func(k string) bool { return *key == "" || *key == k }
	for _, k := range cs.ToDelete {
		if show(k) {
			fmt.Printf("DELETE %s (id=%d)\n", k, target[k].ID)
		}
	}
	for _, k := range cs.ToUpdate {
		if !show(k) {
			continue
		}
		norm, err := reconcile.Normalize(source[k])
		if err != nil {
			fmt.Printf("UPDATE %s: %v\n", k, err)
			continue
		}
		for _, c := range reconcile.FieldChanges(norm, target[k]) {
			fmt.Printf("UPDATE %s (id=%d): %s\n", k, target[k].ID, c)
		}
	}
	for _, k := range cs.ToCreate {
		if show(k) {
			fmt.Printf("CREATE %s\n", k)
		}
	}
}
