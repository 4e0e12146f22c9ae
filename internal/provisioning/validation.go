package provisioning

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a spec validation error or warning.
type ValidationError struct {
	Field    string // Spec field that failed validation, e.g. "indices[0].shards"
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationErrors is the list returned by the Validate methods.
type ValidationErrors []ValidationError

// Errors returns the entries with error severity.
func (v ValidationErrors) Errors() ValidationErrors {
	var out ValidationErrors
	for _, ve := range v {
		if ve.IsError() {
			out = append(out, ve)
		}
	}
	return out
}

// Warnings returns the entries with warning severity.
func (v ValidationErrors) Warnings() ValidationErrors {
	var out ValidationErrors
	for _, ve := range v {
		if !ve.IsError() {
			out = append(out, ve)
		}
	}
	return out
}

// Err joins the error-severity entries into one error wrapping
// ErrInvalidSpec, or returns nil if there are none.
func (v ValidationErrors) Err() error {
	errs := v.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w:\n  %s", ErrInvalidSpec, strings.Join(msgs, "\n  "))
}

func errorf(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: "error"}
}

func warnf(field, format string, args ...any) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: "warning"}
}

// Validate checks a user spec before any cluster call.
func (u UserSpec) Validate() ValidationErrors {
	var errs ValidationErrors

	switch {
	case u.Name == "":
		errs = append(errs, errorf("name", "username is required"))
	case len(u.Name) > 507:
		errs = append(errs, errorf("name", "username must be at most 507 characters"))
	case strings.TrimSpace(u.Name) != u.Name:
		errs = append(errs, errorf("name", "username must not start or end with whitespace"))
	}

	if u.Password == "" {
		errs = append(errs, errorf("password", "password is required"))
	}

	if len(NormalizeRoles(u.Roles)) == 0 {
		errs = append(errs, warnf("roles", "user %q has no roles and will not be able to do anything", u.Name))
	}

	return errs
}

// invalidIndexChars are rejected by the cluster in index names.
const invalidIndexChars = `\/*?"<>| ,#:`

// ValidateIndexName checks the cluster's index naming rules.
func ValidateIndexName(name string) error {
	switch {
	case name == "":
		return errors.New("index name is required")
	case name == "." || name == "..":
		return fmt.Errorf("index name %q is reserved", name)
	case strings.ToLower(name) != name:
		return fmt.Errorf("index name %q must be lowercase", name)
	case strings.ContainsAny(name, invalidIndexChars):
		return fmt.Errorf("index name %q must not contain any of %s", name, invalidIndexChars)
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "_"), strings.HasPrefix(name, "+"):
		return fmt.Errorf("index name %q must not start with '-', '_' or '+'", name)
	case len(name) > 255:
		return fmt.Errorf("index name %q is longer than 255 bytes", name)
	}
	return nil
}

// Validate checks an index spec and its seed documents.
func (s IndexSpec) Validate() ValidationErrors {
	var errs ValidationErrors

	if err := ValidateIndexName(s.Name); err != nil {
		errs = append(errs, errorf("name", "%v", err))
	}
	if s.Shards < 1 {
		errs = append(errs, errorf("shards", "must be at least 1, got %d", s.Shards))
	}
	if s.Replicas < 0 {
		errs = append(errs, errorf("replicas", "must not be negative, got %d", s.Replicas))
	}

	fields := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		path := fmt.Sprintf("fields[%d]", i)
		if f.Name == "" {
			errs = append(errs, errorf(path+".name", "field name is required"))
			continue
		}
		if _, dup := fields[f.Name]; dup {
			errs = append(errs, errorf(path+".name", "duplicate field %q", f.Name))
		}
		fields[f.Name] = struct{}{}

		if f.Type == "" {
			errs = append(errs, errorf(path+".type", "field %q needs a type", f.Name))
		}
		if f.Keyword && f.Type != "text" {
			errs = append(errs, warnf(path+".keyword", "keyword sub-field is only added to text fields, %q is %s", f.Name, f.Type))
		}
	}

	ids := make(map[string]struct{}, len(s.Seed))
	for i, d := range s.Seed {
		if d.ID == "" {
			continue // reported per document by SeedDocuments
		}
		if _, dup := ids[d.ID]; dup {
			errs = append(errs, errorf(fmt.Sprintf("seed[%d].id", i), "duplicate document id %q", d.ID))
		}
		ids[d.ID] = struct{}{}
	}

	return errs
}

// validateDocument is the local check SeedDocuments runs per document.
func validateDocument(d Document) error {
	switch {
	case d.ID == "":
		return fmt.Errorf("%w: document id is required", ErrInvalidSpec)
	case d.Fields == nil:
		return fmt.Errorf("%w: document %q has no fields", ErrInvalidSpec, d.ID)
	}
	return nil
}
