package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/imamik/esprov/internal/provisioning"
	"github.com/imamik/esprov/internal/util/ptr"
)

// Manifest is the YAML form of a provisioning plan.
type Manifest struct {
	// Policy is "skip" (default) or "recreate".
	Policy string `yaml:"policy,omitempty"`
	// Refresh makes seeded documents searchable right away. Defaults to true.
	Refresh *bool            `yaml:"refresh,omitempty"`
	Users   []UserManifest   `yaml:"users,omitempty"`
	Indices []IndexManifest  `yaml:"indices,omitempty"`
	Verify  []VerifyManifest `yaml:"verify,omitempty"`
}

// UserManifest declares a user. The password is given inline or read from
// the environment variable named by password_env.
type UserManifest struct {
	Name        string   `yaml:"name"`
	Password    string   `yaml:"password,omitempty"`
	PasswordEnv string   `yaml:"password_env,omitempty"`
	Roles       []string `yaml:"roles"`
	FullName    string   `yaml:"full_name,omitempty"`
	Email       string   `yaml:"email,omitempty"`
}

// IndexManifest declares an index with its mapping and seed documents.
type IndexManifest struct {
	Name      string             `yaml:"name"`
	Shards    int                `yaml:"shards"`
	Replicas  int                `yaml:"replicas"`
	Fields    []FieldManifest    `yaml:"fields"`
	Documents []DocumentManifest `yaml:"documents,omitempty"`
}

// FieldManifest declares one mapped field.
type FieldManifest struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Keyword bool   `yaml:"keyword,omitempty"`
}

// DocumentManifest declares one seed document.
type DocumentManifest struct {
	ID     string         `yaml:"id"`
	Fields map[string]any `yaml:"fields"`
}

// VerifyManifest declares one verification suite run.
type VerifyManifest struct {
	Index    string   `yaml:"index"`
	Query    string   `yaml:"query"`
	Top      int      `yaml:"top,omitempty"`
	RangeMin *float64 `yaml:"range_min,omitempty"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseManifest parses a manifest. Unknown keys are rejected so that typos
// do not silently drop settings.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return &m, nil
}

// Plan converts the manifest into a provisioning plan. lookup resolves
// password_env references; pass os.Getenv outside tests. The plan is
// validated before it is returned.
func (m *Manifest) Plan(lookup func(string) string) (*provisioning.Plan, error) {
	policy, err := provisioning.ParsePolicy(m.Policy)
	if err != nil {
		return nil, err
	}

	plan := &provisioning.Plan{
		Policy:      policy,
		SkipRefresh: !ptr.Deref(m.Refresh, true),
	}

	for i, u := range m.Users {
		password := u.Password
		if u.PasswordEnv != "" {
			if password != "" {
				return nil, fmt.Errorf("users[%d]: password and password_env are mutually exclusive", i)
			}
			password = lookup(u.PasswordEnv)
			if password == "" {
				return nil, fmt.Errorf("users[%d]: environment variable %s is not set", i, u.PasswordEnv)
			}
		}
		plan.Users = append(plan.Users, provisioning.UserSpec{
			Name:     u.Name,
			Password: password,
			Roles:    u.Roles,
			FullName: u.FullName,
			Email:    u.Email,
		})
	}

	for _, ix := range m.Indices {
		spec := provisioning.IndexSpec{
			Name:     ix.Name,
			Shards:   ix.Shards,
			Replicas: ix.Replicas,
		}
		for _, f := range ix.Fields {
			spec.Fields = append(spec.Fields, provisioning.Field{Name: f.Name, Type: f.Type, Keyword: f.Keyword})
		}
		for _, d := range ix.Documents {
			spec.Seed = append(spec.Seed, provisioning.Document{ID: d.ID, Fields: d.Fields})
		}
		plan.Indices = append(plan.Indices, spec)
	}

	for _, v := range m.Verify {
		plan.Verification = append(plan.Verification, provisioning.Verification{
			Index:    v.Index,
			Query:    v.Query,
			TopN:     v.Top,
			RangeMin: v.RangeMin,
		})
	}

	if err := plan.Validate().Err(); err != nil {
		return nil, err
	}
	return plan, nil
}
