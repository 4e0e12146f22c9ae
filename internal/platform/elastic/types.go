package elastic

import "time"

// Health is the subset of GET /_cluster/health the provisioner reports.
type Health struct {
	ClusterName      string `json:"cluster_name"`
	Status           string `json:"status"`
	NumberOfNodes    int    `json:"number_of_nodes"`
	ActiveShards     int    `json:"active_shards"`
	UnassignedShards int    `json:"unassigned_shards"`
	TimedOut         bool   `json:"timed_out"`
}

// Cluster health colors.
const (
	HealthGreen  = "green"
	HealthYellow = "yellow"
	HealthRed    = "red"
)

// User is a native realm user as returned by GET /_security/user/{name}.
type User struct {
	Username string         `json:"username"`
	Roles    []string       `json:"roles"`
	FullName string         `json:"full_name,omitempty"`
	Email    string         `json:"email,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Enabled  bool           `json:"enabled"`
}

// PutUserRequest is the body of PUT /_security/user/{name}.
// Exactly one of Password and PasswordHash is sent when set; leaving both
// empty keeps the current password of an existing user.
type PutUserRequest struct {
	Password     string         `json:"password,omitempty"`
	PasswordHash string         `json:"password_hash,omitempty"`
	Roles        []string       `json:"roles"`
	FullName     string         `json:"full_name,omitempty"`
	Email        string         `json:"email,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// IndexDefinition is the body of PUT /{index}.
type IndexDefinition struct {
	Settings IndexSettings `json:"settings"`
	Mappings IndexMappings `json:"mappings"`
}

// IndexSettings holds the static index settings.
type IndexSettings struct {
	NumberOfShards   int `json:"number_of_shards"`
	NumberOfReplicas int `json:"number_of_replicas"`
}

// IndexMappings holds the explicit field mappings.
type IndexMappings struct {
	Properties Properties `json:"properties"`
}

// DocumentResult is the "result" field of an index API answer.
type DocumentResult string

// Index API results.
const (
	DocumentCreated DocumentResult = "created"
	DocumentUpdated DocumentResult = "updated"
)

// Timeouts mirrors the connection part of config.Timeouts so that this
// package does not depend on config.
type Timeouts struct {
	Request      time.Duration
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultTimeouts returns the values used when no WithTimeouts option is given.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Request:      10 * time.Second,
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}
