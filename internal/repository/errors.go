// Package repository implements data access over MySQL.  This file
// defines sentinel errors reused across repositories so that
// handlers can translate failure scenarios into precise HTTP
// responses with errors.Is instead of string matching.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed
// because of conflicting state, such as deleting a release that
// still has split shares. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrReleaseNotFound is returned when a release id or catalogue
// lookup matches no row.
var ErrReleaseNotFound = errors.New("release not found")

// ErrTrackNotFound is returned when a track lookup matches no row.
var ErrTrackNotFound = errors.New("track not found")

// ErrShareNotFound is returned when a split share id or token
// matches no row.
var ErrShareNotFound = errors.New("split share not found")

// ErrPayoutNotFound is returned when a payout lookup matches no row.
var ErrPayoutNotFound = errors.New("payout not found")

// ErrTicketNotFound is returned when a support ticket lookup
// matches no row.
var ErrTicketNotFound = errors.New("ticket not found")
