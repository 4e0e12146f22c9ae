// Package provisioning reconciles declarative Elasticsearch resources against
// a live cluster.
//
// # Core Types
//
// Provisioner wraps an elastic.API and exposes one idempotent operation per
// resource kind: EnsureUser, EnsureIndex and SeedDocuments. Each returns a
// ReconcileResult built through the Created, AlreadyExists and Failed
// constructors, never an uncaught error.
//
// RunVerificationSuite runs a fixed battery of read-only queries against an
// index and reports one VerificationOutcome per query.
//
// Apply runs the whole workflow as a sequence of Phases (health, users,
// indices, verification) sharing a Context, and aggregates everything into
// a Report.
//
// # Observability
//
// Progress is reported through an Observer. ConsoleObserver writes
// structured events through a logr.Logger; Metrics records counters and
// latencies on a caller-owned prometheus registry.
package provisioning
