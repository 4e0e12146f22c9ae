package wizard

import (
	"context"
	"fmt"
)

// UserAnswers holds the answers of the user wizard.
type UserAnswers struct {
	Username string
	Password string
	// Roles are the selected built-in roles.
	Roles []string
	// ExtraRoles is a comma-separated list of custom roles.
	ExtraRoles string
}

// IndexAnswers holds the answers of the index wizard.
type IndexAnswers struct {
	Name     string
	Shards   int
	Replicas int
	// Seed writes the sample documents after creating the index.
	Seed bool
	// Recreate deletes an existing index first.
	Recreate bool
}

// SearchAnswers holds the answers of the search wizard.
type SearchAnswers struct {
	Index string
	Query string
}

// RunUserWizard asks for a username, a password and roles.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunUserWizard(ctx context.Context) (*UserAnswers, error) {
	answers := &UserAnswers{Roles: []string{"viewer"}}
	if err := runUserGroup(ctx, answers); err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	return answers, nil
}

// RunIndexWizard asks for the index settings, starting from defaults.
func RunIndexWizard(ctx context.Context, defaults IndexAnswers) (*IndexAnswers, error) {
	answers := defaults
	if err := runIndexGroup(ctx, &answers); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	if err := runIndexOptionsGroup(ctx, &answers); err != nil {
		return nil, fmt.Errorf("index options: %w", err)
	}
	return &answers, nil
}

// RunSearchWizard asks for an index and a query text.
func RunSearchWizard(ctx context.Context, defaultIndex string) (*SearchAnswers, error) {
	answers := &SearchAnswers{Index: defaultIndex}
	if err := runSearchGroup(ctx, answers); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return answers, nil
}
