package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errUsernameRequired  = errors.New("username is required")
	errUsernameSpaces    = errors.New("username must not start or end with whitespace")
	errPasswordTooShort  = errors.New("password must be at least 6 characters")
	errRolesRequired     = errors.New("select or enter at least one role")
	errIndexNameRequired = errors.New("index name is required")
	errQueryRequired     = errors.New("query text is required")
)
