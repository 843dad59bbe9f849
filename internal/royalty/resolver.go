// Package royalty implements the split-share attribution engine: a
// pure resolver that decides what percentage of a release's
// earnings a user is entitled to, and an aggregator that applies
// that percentage across raw stream-earnings rows to produce the
// earnings views served by the API.  Nothing in this package
// touches the database or the request context; callers fetch the
// inputs and thread the requesting user id in explicitly.
package royalty

// Role tags the outcome of resolving a user against a release.
type Role uint8

const (
	// RoleNone means the user has no claim on the release and no
	// visibility into its earnings.
	RoleNone Role = iota
	// RoleOwner is the user who created the release; their claim is
	// the residual left after all accepted collaborator shares.
	RoleOwner
	// RoleCollaborator is a user holding at least one accepted
	// split share on a release they do not own.
	RoleCollaborator
)

// String returns the role name used in API responses.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleCollaborator:
		return "collaborator"
	}
	return "none"
}

// AcceptedShare is the slice of a split share the resolver needs:
// the linked user and the percentage.  Only accepted shares carry a
// linked user, so pending invitations never appear here.
type AcceptedShare struct {
	UserID  uint64
	Percent float64
}

// Claim is the resolved outcome for one (release, user) pair.
// Percent is meaningful only when Role is not RoleNone.
type Claim struct {
	Role    Role
	Percent float64
}

// HasAccess reports whether the claim grants any visibility into
// the release's earnings.
func (c Claim) HasAccess() bool { return c.Role != RoleNone }

// Resolve determines user userID's claim on a release owned by
// ownerID given the release's accepted shares.  It is a pure
// function: identical inputs always produce the identical claim.
//
// The owner's claim is 100 minus the sum of all accepted
// percentages; a collaborator's claim is their accepted share's
// percentage. Should the same user somehow hold more than one
// accepted share on the release, the percentages are summed rather
// than one being picked arbitrarily. Everyone else resolves to
// RoleNone. Unknown releases and users fall out naturally as
// RoleNone; distinguishing "release does not exist" is the
// caller's existence check, not the resolver's.
func Resolve(ownerID uint64, accepted []AcceptedShare, userID uint64) Claim {
	var collaboratorTotal float64
	for _, s := range accepted {
		collaboratorTotal += s.Percent
	}
	if userID == ownerID {
		return Claim{Role: RoleOwner, Percent: 100 - collaboratorTotal}
	}
	var own float64
	found := false
	for _, s := range accepted {
		if s.UserID == userID {
			own += s.Percent
			found = true
		}
	}
	if found {
		return Claim{Role: RoleCollaborator, Percent: own}
	}
	return Claim{Role: RoleNone}
}
