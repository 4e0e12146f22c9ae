// Package testing provides test utilities, fakes, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - FakeCluster: In-memory cluster with mapping checks and query evaluation
//   - MockClusterAPI: testify mock of elastic.API
//   - MappingBuilder: Fluent builder for index mappings
//   - ClusterFixture: Pre-configured fake cluster for common scenarios
//
// Usage:
//
//	fake := testing.NewClusterFixture().WithArticles().Fake()
//	p := provisioning.New(fake, observer)
package testing
