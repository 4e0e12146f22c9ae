// Package retry provides exponential backoff retry logic for transient failures.
//
// The [WithExponentialBackoff] function retries an operation with a bounded
// number of attempts, an initial delay and a maximum delay. It is used for
// Elasticsearch API calls that fail because the cluster is unreachable or
// temporarily unavailable. Errors wrapped with [Fatal] stop the loop at once.
package retry
