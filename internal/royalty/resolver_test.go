package royalty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOwnerWithoutCollaborators(t *testing.T) {
	claim := Resolve(1, nil, 1)
	assert.Equal(t, RoleOwner, claim.Role)
	assert.Equal(t, 100.0, claim.Percent)
}

func TestResolveOwnerResidual(t *testing.T) {
	shares := []AcceptedShare{
		{UserID: 2, Percent: 30},
		{UserID: 3, Percent: 12.5},
	}
	claim := Resolve(1, shares, 1)
	assert.Equal(t, RoleOwner, claim.Role)
	assert.InDelta(t, 57.5, claim.Percent, 1e-9)
}

func TestResolveCollaborator(t *testing.T) {
	shares := []AcceptedShare{{UserID: 2, Percent: 30}}
	claim := Resolve(1, shares, 2)
	assert.Equal(t, RoleCollaborator, claim.Role)
	assert.Equal(t, 30.0, claim.Percent)
}

// A user holding two accepted shares on the same release is a
// data-integrity anomaly; the resolver sums them instead of
// picking one.
func TestResolveDuplicateAcceptedSharesAreSummed(t *testing.T) {
	shares := []AcceptedShare{
		{UserID: 2, Percent: 10},
		{UserID: 2, Percent: 15},
	}
	claim := Resolve(1, shares, 2)
	assert.Equal(t, RoleCollaborator, claim.Role)
	assert.InDelta(t, 25.0, claim.Percent, 1e-9)
}

func TestResolveNoAccess(t *testing.T) {
	shares := []AcceptedShare{{UserID: 2, Percent: 30}}
	for _, userID := range []uint64{3, 4, 99} {
		claim := Resolve(1, shares, userID)
		assert.Equal(t, RoleNone, claim.Role, "user %d", userID)
		assert.False(t, claim.HasAccess())
	}
}

// Pending invitations never reach the resolver, so however many
// exist for other emails, an outsider still resolves to no access
// and the owner's residual reflects accepted shares only.
func TestResolveIgnoresEverythingButAcceptedInput(t *testing.T) {
	claim := Resolve(1, nil, 7)
	assert.Equal(t, RoleNone, claim.Role)

	owner := Resolve(1, nil, 1)
	assert.Equal(t, 100.0, owner.Percent)
}

// Owner residual plus all collaborator claims must total exactly
// 100 for any accepted-share configuration.
func TestClaimsCompleteness(t *testing.T) {
	cases := [][]AcceptedShare{
		nil,
		{{UserID: 2, Percent: 100}},
		{{UserID: 2, Percent: 33.33}, {UserID: 3, Percent: 33.33}, {UserID: 4, Percent: 33.34}},
		{{UserID: 2, Percent: 0.01}},
		{{UserID: 2, Percent: 50}, {UserID: 3, Percent: 25}},
	}
	for _, shares := range cases {
		total := Resolve(1, shares, 1).Percent
		seen := map[uint64]bool{}
		for _, s := range shares {
			if seen[s.UserID] {
				continue
			}
			seen[s.UserID] = true
			total += Resolve(1, shares, s.UserID).Percent
		}
		assert.InDelta(t, 100.0, total, 1e-9, "shares %+v", shares)
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "owner", RoleOwner.String())
	assert.Equal(t, "collaborator", RoleCollaborator.String())
	assert.Equal(t, "none", RoleNone.String())
}
