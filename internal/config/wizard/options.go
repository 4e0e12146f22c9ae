package wizard

import (
	"strconv"

	"github.com/charmbracelet/huh"
)

// RoleOption represents a built-in cluster role.
type RoleOption struct {
	Value       string
	Description string
}

// Roles contains the built-in roles offered by the user wizard.
var Roles = []RoleOption{
	{Value: "viewer", Description: "Read-only access to Kibana and all indices"},
	{Value: "editor", Description: "Read and write access to Kibana objects"},
	{Value: "superuser", Description: "Full cluster access"},
	{Value: "kibana_admin", Description: "Kibana administration"},
	{Value: "monitoring_user", Description: "Stack monitoring read access"},
	{Value: "ingest_admin", Description: "Manage ingest pipelines and templates"},
}

// ShardCounts are the primary shard counts offered by the index wizard.
var ShardCounts = []int{1, 2, 3, 5}

// ReplicaCounts are the replica counts offered by the index wizard.
var ReplicaCounts = []int{0, 1, 2}

// RolesToOptions converts Roles to huh options.
func RolesToOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Roles))
	for i, r := range Roles {
		opts[i] = huh.NewOption(r.Value+" - "+r.Description, r.Value)
	}
	return opts
}

// CountsToOptions converts counts to huh options.
func CountsToOptions(counts []int) []huh.Option[int] {
	opts := make([]huh.Option[int], len(counts))
	for i, c := range counts {
		opts[i] = huh.NewOption(strconv.Itoa(c), c)
	}
	return opts
}
