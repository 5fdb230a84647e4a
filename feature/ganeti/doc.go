// Package ganeti reads the authoritative instance list of a Ganeti cluster.
//
// The Client calls the RAPI bulk listing (/2/instances?bulk=1) with HTTP basic
// auth and an optional CA bundle. A captured copy of the same document can be
// loaded from disk or from object storage (s3://bucket/key) instead.
//
// Only name, beparams.vcpus, beparams.memory and disk.sizes are read. Parse is
// tolerant per entry: an instance with a wrong field type is returned with its
// fields missing, so the reconciler reports it as malformed while the rest of
// the cluster is still synchronized.
package ganeti
