package model

import "time"

// ShareStatus is the closed set of lifecycle states for a split
// share invitation.  The model deliberately has no rejected or
// expired state: an invitation that is never accepted stays
// pending until it is, and resending only re-delivers the
// notification.  Values are validated at the boundary with
// ParseShareStatus rather than compared as free-form strings at
// each use site.
type ShareStatus string

const (
	SharePending  ShareStatus = "pending"
	ShareAccepted ShareStatus = "accepted"
)

// ParseShareStatus validates a raw status string read from the
// database or a request and returns the typed value.  Unknown
// values return false.
func ParseShareStatus(s string) (ShareStatus, bool) {
	switch ShareStatus(s) {
	case SharePending, ShareAccepted:
		return ShareStatus(s), true
	}
	return "", false
}

// SplitShare is a royalty split invitation on a release.  A share
// is created pending with a fresh unguessable token; accepting via
// the token links the invitee's user account and is a one-way,
// terminal transition.  The sum of percentages across all pending
// and accepted shares of a release never exceeds 100.
//
// Fields:
//  ID           – primary key identifier.
//  ReleaseID    – release the share applies to.
//  InviteeEmail – email the invitation was addressed to, stored
//                 lower-cased; acceptance matches it against the
//                 accepting account case-insensitively.
//  DisplayName  – collaborator name shown in split listings;
//                 defaults to the email when not provided.
//  Percent      – royalty percentage in the open interval (0, 100].
//  Status       – pending or accepted.
//  Token        – random hex token embedded in the acceptance link.
//  UserID       – linked user account; null until accepted.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type SplitShare struct {
	ID           uint64      // split_shares.id
	ReleaseID    uint64      // split_shares.release_id
	InviteeEmail string      // split_shares.invitee_email
	DisplayName  string      // split_shares.display_name
	Percent      float64     // split_shares.percent (DECIMAL(5,2))
	Status       ShareStatus // split_shares.status
	Token        string      // split_shares.token
	UserID       *uint64     // split_shares.user_id (nullable until accepted)
	CreatedAt    time.Time   // split_shares.created_at
	UpdatedAt    time.Time   // split_shares.updated_at
}
