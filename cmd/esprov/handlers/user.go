package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/esprov/internal/provisioning"
	"github.com/imamik/esprov/internal/ui/tui"
)

// errNotInteractive is returned when arguments are missing and stdin is not
// a terminal to prompt on.
var errNotInteractive = errors.New("missing arguments and no terminal to prompt on")

// UserOptions holds the user command flags.
type UserOptions struct {
	HashPassword bool
	FullName     string
	Email        string
}

// User ensures a native realm user exists.
//
// args is either empty, in which case a wizard asks for the values, or
// username, password and a comma-separated role list.
func User(ctx context.Context, opts *GlobalOptions, userOpts UserOptions, args []string) error {
	spec, err := userSpecFromArgs(ctx, args)
	if err != nil {
		return err
	}
	spec.FullName = userOpts.FullName
	spec.Email = userOpts.Email

	spec = spec.Normalize()
	if err := spec.Validate().Err(); err != nil {
		return err
	}

	var provOpts []provisioning.Option
	if userOpts.HashPassword {
		provOpts = append(provOpts, provisioning.WithHashPasswords(0))
	}

	s, err := newSession(opts, provOpts...)
	if err != nil {
		return err
	}
	defer s.close()

	result := s.provisioner.EnsureUser(ctx, spec)

	if opts.JSON {
		if err := printJSON(stdout, toResultJSON(result)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, tui.RenderResults("Users", []provisioning.ReconcileResult{result}))
	}

	return resultError(result)
}

func userSpecFromArgs(ctx context.Context, args []string) (provisioning.UserSpec, error) {
	if len(args) == 3 {
		return provisioning.UserSpec{
			Name:     args[0],
			Password: args[1],
			Roles:    provisioning.ParseRoles(args[2]),
		}, nil
	}

	if !isInteractive() {
		return provisioning.UserSpec{}, fmt.Errorf("%w: usage: esprov user <username> <password> <roles>", errNotInteractive)
	}
	answers, err := runUserWizard(ctx)
	if err != nil {
		return provisioning.UserSpec{}, fmt.Errorf("wizard canceled: %w", err)
	}
	return answers.Spec(), nil
}
