package provisioning

import (
	"fmt"
	"slices"
	"strings"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// UserSpec describes a native realm user.
type UserSpec struct {
	Name     string
	Password string
	// Roles behaves as a set; see Normalize.
	Roles    []string
	FullName string
	Email    string
}

// Normalize returns a copy with trimmed, de-duplicated and sorted roles.
func (u UserSpec) Normalize() UserSpec {
	u.Name = strings.TrimSpace(u.Name)
	u.Roles = NormalizeRoles(u.Roles)
	return u
}

// NormalizeRoles trims, drops empty entries, de-duplicates and sorts roles.
// The result is never nil so that it encodes as an empty JSON array.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseRoles splits a comma-separated role list.
func ParseRoles(s string) []string {
	return NormalizeRoles(strings.Split(s, ","))
}

// Field is one explicit field mapping of an index.
type Field struct {
	Name string
	Type string
	// Keyword adds a "keyword" sub-field to a text field so it can be
	// used in terms aggregations.
	Keyword bool
}

// Document is a seed document.
type Document struct {
	ID     string
	Fields map[string]any
}

// IndexSpec describes an index, its mapping and its seed documents.
type IndexSpec struct {
	Name     string
	Shards   int
	Replicas int
	Fields   []Field
	Seed     []Document
}

// keywordIgnoreAbove matches the dynamic-mapping default for keyword
// sub-fields, so live mappings compare equal to the declared ones.
const keywordIgnoreAbove = 256

// Properties returns the field mappings in declaration order.
func (s IndexSpec) Properties() elastic.Properties {
	props := make(elastic.Properties, 0, len(s.Fields))
	for _, f := range s.Fields {
		m := elastic.FieldMapping{Type: f.Type}
		if f.Keyword && f.Type == elastic.TypeText {
			m.Fields = map[string]elastic.FieldMapping{
				"keyword": {Type: elastic.TypeKeyword, IgnoreAbove: keywordIgnoreAbove},
			}
		}
		props = append(props, elastic.Property{Name: f.Name, Mapping: m})
	}
	return props
}

// Definition returns the body of the create-index call.
func (s IndexSpec) Definition() elastic.IndexDefinition {
	return elastic.IndexDefinition{
		Settings: elastic.IndexSettings{
			NumberOfShards:   s.Shards,
			NumberOfReplicas: s.Replicas,
		},
		Mappings: elastic.IndexMappings{Properties: s.Properties()},
	}
}

// Policy decides what EnsureIndex does with an index that already exists.
type Policy int

const (
	// Skip leaves an existing index untouched.
	Skip Policy = iota
	// Recreate deletes an existing index and creates it again.
	Recreate
)

func (p Policy) String() string {
	switch p {
	case Skip:
		return "skip"
	case Recreate:
		return "recreate"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses "skip" or "recreate".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return Skip, nil
	case "recreate":
		return Recreate, nil
	default:
		return Skip, fmt.Errorf("unknown policy %q (want skip or recreate)", s)
	}
}
