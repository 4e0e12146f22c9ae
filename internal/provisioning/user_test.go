package provisioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/imamik/esprov/internal/platform/elastic"
	estesting "github.com/imamik/esprov/internal/testing"
)

func TestEnsureUser_CreatedThenAlreadyExists(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := estesting.NewFakeCluster()
	p, _ := newTestProvisioner(fake)

	first := p.EnsureUser(ctx, aliceSpec())
	require.Equal(t, OutcomeCreated, first.Outcome, first.String())
	assert.Equal(t, StatePresent, first.State)
	before, writes, ok := fake.UserRecord("alice")
	require.True(t, ok)
	assert.Equal(t, 1, writes)
	assert.Equal(t, []string{"editor", "viewer"}, before.Roles)

	second := p.EnsureUser(ctx, aliceSpec())
	assert.Equal(t, OutcomeAlreadyExists, second.Outcome)
	assert.Equal(t, Skipped, second.Disposition)

	after, writes, _ := fake.UserRecord("alice")
	assert.Equal(t, before, after)
	assert.Equal(t, 1, writes, "an unchanged user must not be written again")
	assert.Equal(t, 1, fake.CallCount("PutUser"))
}

func TestEnsureUser_RolesAreASet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := estesting.NewFakeCluster()
	p, _ := newTestProvisioner(fake)

	require.True(t, p.EnsureUser(ctx, aliceSpec()).OK())

	reordered := aliceSpec()
	reordered.Roles = []string{" editor", "viewer", "editor", ""}
	r := p.EnsureUser(ctx, reordered)
	assert.Equal(t, "already_exists(skipped)", r.Label())
}

func TestEnsureUser_UpdatesChangedRoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := estesting.NewFakeCluster()
	p, obs := newTestProvisioner(fake)

	require.True(t, p.EnsureUser(ctx, aliceSpec()).OK())

	changed := aliceSpec()
	changed.Roles = []string{"superuser"}
	r := p.EnsureUser(ctx, changed)
	assert.Equal(t, OutcomeAlreadyExists, r.Outcome)
	assert.Equal(t, Updated, r.Disposition)

	rec, writes, _ := fake.UserRecord("alice")
	assert.Equal(t, []string{"superuser"}, rec.Roles)
	assert.Equal(t, 2, writes)

	drift := obs.eventsOf(EventDriftDetected)
	require.Len(t, drift, 1)
	assert.Contains(t, drift[0].Message, "superuser")
}

func TestEnsureUser_RotatedPasswordIsWritten(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := estesting.NewFakeCluster()
	p, obs := newTestProvisioner(fake)

	require.Equal(t, OutcomeCreated, p.EnsureUser(ctx, aliceSpec()).Outcome)

	rotated := aliceSpec()
	rotated.Password = "rotated-password"
	r := p.EnsureUser(ctx, rotated)
	assert.Equal(t, "already_exists(updated)", r.Label())

	plain, _ := fake.UserPassword("alice")
	assert.Equal(t, "rotated-password", plain)
	_, writes, _ := fake.UserRecord("alice")
	assert.Equal(t, 2, writes)

	drift := obs.eventsOf(EventDriftDetected)
	require.Len(t, drift, 1)
	assert.Contains(t, drift[0].Message, "password changed")

	again := p.EnsureUser(ctx, rotated)
	assert.Equal(t, "already_exists(skipped)", again.Label())
}

func TestEnsureUser_HashedPasswordRerunIsSkipped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := estesting.NewFakeCluster()
	p, _ := newTestProvisioner(fake, WithHashPasswords(bcrypt.MinCost))

	require.Equal(t, OutcomeCreated, p.EnsureUser(ctx, aliceSpec()).Outcome)
	r := p.EnsureUser(ctx, aliceSpec())
	assert.Equal(t, "already_exists(skipped)", r.Label())
	assert.Equal(t, 1, fake.CallCount("PutUser"))
}

func TestEnsureUser_PasswordCheckFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &estesting.MockClusterAPI{}
	api.On("GetUser", mock.Anything, "alice").Return(&elastic.User{
		Username: "alice",
		Roles:    []string{"viewer", "editor"},
		FullName: aliceSpec().FullName,
		Email:    aliceSpec().Email,
	}, nil)
	api.On("Authenticate", mock.Anything, "alice", "s3cret-pass").Return(false, estesting.ConnectionError("authenticate alice"))
	p, _ := newTestProvisioner(api)

	r := p.EnsureUser(ctx, aliceSpec())
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Equal(t, "password check failed", r.Reason)
	assert.Equal(t, StatePresent, r.State)
	assert.ErrorIs(t, r.Err, elastic.ErrConnection)
	api.AssertNotCalled(t, "PutUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureUser_CreatedFalseIsUpdated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &estesting.MockClusterAPI{}
	api.On("GetUser", mock.Anything, "alice").Return(nil, nil)
	api.On("PutUser", mock.Anything, "alice", mock.Anything).Return(false, nil)
	p, _ := newTestProvisioner(api)

	r := p.EnsureUser(ctx, aliceSpec())
	assert.Equal(t, "already_exists(updated)", r.Label())
	api.AssertExpectations(t)
}

func TestEnsureUser_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		inject    string
		err       error
		sentinel  error
		reason    string
		wantState State
	}{
		{"lookup rejected", "GetUser", estesting.AuthError("get user alice"), elastic.ErrAuth, "lookup failed", StateUnknown},
		{"write rejected", "PutUser", estesting.AuthError("put user alice"), elastic.ErrAuth, "create failed", StateCreating},
		{"unreachable", "GetUser", estesting.ConnectionError("get user alice"), elastic.ErrConnection, "lookup failed", StateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fake := estesting.NewFakeCluster()
			fake.FailOn(tt.inject, tt.err, 0)
			p, obs := newTestProvisioner(fake)

			r := p.EnsureUser(context.Background(), aliceSpec())
			assert.Equal(t, OutcomeFailed, r.Outcome)
			assert.ErrorIs(t, r.Err, tt.sentinel)
			assert.Equal(t, tt.reason, r.Reason)
			assert.Equal(t, tt.wantState, r.State)
			assert.Len(t, obs.eventsOf(EventResourceFailed), 1)
		})
	}
}

func TestEnsureUser_UnknownRoleCarriesClusterBody(t *testing.T) {
	t.Parallel()
	fake := estesting.NewFakeCluster()
	p, _ := newTestProvisioner(fake)

	spec := aliceSpec()
	spec.Roles = []string{"made_up_role"}
	r := p.EnsureUser(context.Background(), spec)

	require.Equal(t, OutcomeFailed, r.Outcome)
	assert.ErrorIs(t, r.Err, elastic.ErrValidation)
	var apiErr *elastic.APIError
	require.ErrorAs(t, r.Err, &apiErr)
	assert.Contains(t, apiErr.Body, "unknown role [made_up_role]")
	_, _, exists := fake.UserRecord("alice")
	assert.False(t, exists)
}

func TestEnsureUser_InvalidSpecMakesNoCalls(t *testing.T) {
	t.Parallel()
	fake := estesting.NewFakeCluster()
	p, _ := newTestProvisioner(fake)

	r := p.EnsureUser(context.Background(), UserSpec{Name: "bob"})
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.ErrorIs(t, r.Err, ErrInvalidSpec)
	assert.Empty(t, fake.Calls())
}

func TestEnsureUser_HashPasswords(t *testing.T) {
	t.Parallel()
	fake := estesting.NewFakeCluster()
	p, _ := newTestProvisioner(fake, WithHashPasswords(bcrypt.MinCost))

	r := p.EnsureUser(context.Background(), aliceSpec())
	require.Equal(t, OutcomeCreated, r.Outcome)

	plain, hash := fake.UserPassword("alice")
	assert.Empty(t, plain)
	require.NotEmpty(t, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pass")))
}
