// Package elastic wraps the Elasticsearch REST API used by the provisioner.
//
// # Architecture
//
//   - client.go: the [API] interface the provisioner depends on
//   - types.go: request and response shapes for users, indices, documents and health
//   - mapping.go: ordered mapping properties
//   - real_client.go: [RealClient], the go-elasticsearch implementation of [API]
//   - errors.go: classification of transport and HTTP failures
//
// # Retry and Timeout Behavior
//
// Every call gets its own request timeout. Connection failures and
// 429/502/503/504 answers are retried with bounded exponential backoff.
// Authentication (401/403), validation (400), not-found and conflict answers
// are returned at once; they are never retried.
//
// Errors carry a [Kind] and match the sentinels with errors.Is:
//
//	if errors.Is(err, elastic.ErrAuth) {
//	    // credentials rejected
//	}
package elastic
