package provisioning

import (
	"context"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/imamik/esprov/internal/platform/elastic"
)

// userProfile is the part of a user record that GetUser returns. Passwords
// cannot be read back and are checked by authenticating instead.
type userProfile struct {
	Roles    []string
	FullName string
	Email    string
}

var profileCmpOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
}

func liveProfile(u *elastic.User) userProfile {
	return userProfile{Roles: NormalizeRoles(u.Roles), FullName: u.FullName, Email: u.Email}
}

func (u UserSpec) profile() userProfile {
	return userProfile{Roles: u.Roles, FullName: u.FullName, Email: u.Email}
}

// EnsureUser creates the user if it is absent and updates it if its roles,
// profile or password differ. A user whose roles and profile match and who
// can authenticate with the spec's password is left untouched.
func (p *Provisioner) EnsureUser(ctx context.Context, spec UserSpec) ReconcileResult {
	start := time.Now()
	r := p.ensureUser(ctx, spec.Normalize())
	p.opts.Metrics.recordResult(r, time.Since(start))
	LogResult(p.observer, r)
	return r
}

func (p *Provisioner) ensureUser(ctx context.Context, spec UserSpec) ReconcileResult {
	t := newTracker(KindUser, spec.Name)

	if err := spec.Validate().Err(); err != nil {
		return t.fail("invalid spec", err)
	}

	live, err := p.api.GetUser(ctx, spec.Name)
	if err != nil {
		return t.fail("lookup failed", err)
	}

	next := StateCreating
	if live != nil {
		if err := t.to(StatePresent); err != nil {
			return t.fail("illegal transition", err)
		}
		diff := cmp.Diff(liveProfile(live), spec.profile(), profileCmpOpts...)
		if diff == "" {
			ok, err := p.api.Authenticate(ctx, spec.Name, spec.Password)
			if err != nil {
				return t.fail("password check failed", err)
			}
			if ok {
				return AlreadyExists(KindUser, spec.Name, Skipped)
			}
			diff = "password changed"
		}
		LogDrift(p.observer, KindUser, spec.Name, diff)
		next = StateUpdating
	} else {
		if err := t.to(StateAbsent); err != nil {
			return t.fail("illegal transition", err)
		}
		LogResourceCreating(p.observer, KindUser, spec.Name)
	}
	if err := t.to(next); err != nil {
		return t.fail("illegal transition", err)
	}

	req := elastic.PutUserRequest{
		Roles:    spec.Roles,
		FullName: spec.FullName,
		Email:    spec.Email,
	}
	if p.opts.HashPasswords {
		hash, err := p.hashPassword(spec.Password)
		if err != nil {
			return t.fail("hash password", err)
		}
		req.PasswordHash = hash
	} else {
		req.Password = spec.Password
	}

	created, err := p.api.PutUser(ctx, spec.Name, req)
	if err != nil {
		reason := "create failed"
		if next == StateUpdating {
			reason = "update failed"
		}
		return t.fail(reason, err)
	}
	if err := t.to(StatePresent); err != nil {
		return t.fail("illegal transition", err)
	}

	// created:false means the record existed by the time the write landed,
	// even if the lookup saw no user
	if live == nil && created {
		return Created(KindUser, spec.Name)
	}
	return AlreadyExists(KindUser, spec.Name, Updated)
}
