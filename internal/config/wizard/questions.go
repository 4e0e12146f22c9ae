package wizard

import (
	"context"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/imamik/esprov/internal/provisioning"
)

// runUserGroup prompts for the user's credentials and roles.
func runUserGroup(ctx context.Context, answers *UserAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("alice").
				Value(&answers.Username).
				Validate(validateUsername),
			huh.NewInput().
				Title("Password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				Value(&answers.Password).
				Validate(validatePassword),
		).Title("Credentials"),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Built-in Roles").
				Options(RolesToOptions()...).
				Value(&answers.Roles),
			huh.NewInput().
				Title("Custom Roles (Optional)").
				Description("Comma-separated role names defined on the cluster").
				Value(&answers.ExtraRoles).
				Validate(func(s string) error {
					return validateRoles(answers.Roles, s)
				}),
		).Title("Roles"),
	).RunWithContext(ctx)
}

// runIndexGroup prompts for the index name and its shard layout.
func runIndexGroup(ctx context.Context, answers *IndexAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Index Name").
				Description("Lowercase, no spaces").
				Placeholder("articles").
				Value(&answers.Name).
				Validate(validateIndexName),
			huh.NewSelect[int]().
				Title("Primary Shards").
				Options(CountsToOptions(ShardCounts)...).
				Value(&answers.Shards),
			huh.NewSelect[int]().
				Title("Replicas").
				Description("A single-node cluster stays yellow with replicas > 0").
				Options(CountsToOptions(ReplicaCounts)...).
				Value(&answers.Replicas),
		).Title("Index"),
	).RunWithContext(ctx)
}

// runIndexOptionsGroup prompts for seeding and the existing-index policy.
func runIndexOptionsGroup(ctx context.Context, answers *IndexAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Seed sample documents?").
				Value(&answers.Seed),
			huh.NewConfirm().
				Title("Recreate the index if it exists?").
				Description("Deletes all documents of the existing index").
				Value(&answers.Recreate),
		).Title("Options"),
	).RunWithContext(ctx)
}

// runSearchGroup prompts for the index and the query text.
func runSearchGroup(ctx context.Context, answers *SearchAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Index").
				Value(&answers.Index).
				Validate(validateIndexName),
			huh.NewInput().
				Title("Query").
				Description("Free text used by every verification query").
				Placeholder("elasticsearch").
				Value(&answers.Query).
				Validate(validateQuery),
		).Title("Search"),
	).RunWithContext(ctx)
}

func validateUsername(s string) error {
	if s == "" {
		return errUsernameRequired
	}
	if strings.TrimSpace(s) != s {
		return errUsernameSpaces
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < 6 {
		return errPasswordTooShort
	}
	return nil
}

func validateRoles(selected []string, extra string) error {
	if len(selected) == 0 && len(provisioning.ParseRoles(extra)) == 0 {
		return errRolesRequired
	}
	return nil
}

func validateIndexName(s string) error {
	if s == "" {
		return errIndexNameRequired
	}
	return provisioning.ValidateIndexName(s)
}

func validateQuery(s string) error {
	if strings.TrimSpace(s) == "" {
		return errQueryRequired
	}
	return nil
}
