// Package manager orchestrates the lifecycle of locally-hosted model handles:
// preset resolution, capability-aware autoscaling, cache lookup, race-free
// deduplication of concurrent loads, active-model tracking and lifecycle
// notifications. It is structured into small files by concern:
//
//   - manager.go: core Manager type, Config, constructor, getters.
//   - load.go: LoadModel / GetOrLoadModel and the in-flight ticket table.
//   - unload.go: UnloadModel, ClearAll, Dispose.
//   - events.go: lifecycle notifications and the subscriber list.
//   - errors.go: typed errors and Is* helpers.
//   - handle.go: the placeholder handle for deferred-load modalities.
//   - status_report.go: the /status projection.
//   - metrics.go: Prometheus collectors.
//
// The manager owns its ticket table, active-model registry and cache
// exclusively; external code goes through public methods only.
package manager
