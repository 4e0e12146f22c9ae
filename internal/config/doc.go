// Package config loads everything esprov needs before it talks to a
// cluster.
//
// [Load] reads the connection settings from a .env file and the process
// environment, with the process environment taking precedence.
// [LoadTimeouts] reads the per-request timeout and retry budget.
// [LoadManifest] parses a declarative YAML manifest of users, indices,
// seed documents and verification queries, and [Manifest.Plan] turns it
// into a provisioning plan. [SampleManifest] is the built-in dataset used
// when no manifest is given.
package config
