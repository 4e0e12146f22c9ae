package wizard

import (
	"slices"

	"github.com/imamik/esprov/internal/provisioning"
)

// Spec creates a UserSpec from the wizard answers.
func (a *UserAnswers) Spec() provisioning.UserSpec {
	roles := slices.Concat(a.Roles, provisioning.ParseRoles(a.ExtraRoles))
	return provisioning.UserSpec{
		Name:     a.Username,
		Password: a.Password,
		Roles:    provisioning.NormalizeRoles(roles),
	}
}

// Spec creates an IndexSpec from the wizard answers. The mapping and the
// seed documents come from template; the seed is dropped unless requested.
func (a *IndexAnswers) Spec(template provisioning.IndexSpec) provisioning.IndexSpec {
	spec := provisioning.IndexSpec{
		Name:     a.Name,
		Shards:   a.Shards,
		Replicas: a.Replicas,
		Fields:   slices.Clone(template.Fields),
	}
	if a.Seed {
		spec.Seed = slices.Clone(template.Seed)
	}
	return spec
}

// Policy returns the existing-index policy chosen in the wizard.
func (a *IndexAnswers) Policy() provisioning.Policy {
	if a.Recreate {
		return provisioning.Recreate
	}
	return provisioning.Skip
}
