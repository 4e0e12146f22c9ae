// Package async provides utilities for bounded parallel execution.
//
// The [Ordered] function runs n independent calls with a concurrency limit
// and returns their results in input order. It is used to seed documents in
// parallel without losing the correspondence between inputs and results.
package async
