package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/soundrail/distro/internal/model"
	q "github.com/soundrail/distro/internal/queue"
	"github.com/soundrail/distro/internal/repository"
)

// Validation and state-conflict errors returned by the invitation
// lifecycle.  Handlers branch on these with errors.Is/As, so they
// must stay distinct: the UI shows a registration prompt on
// ErrNoAccount and a broken-link message on ErrShareNotFound.
var (
	ErrInvalidEmail     = errors.New("invitee email is not a valid address")
	ErrInvalidPercent   = errors.New("percent must be greater than 0 and at most 100")
	ErrDuplicatePending = errors.New("a pending invitation for this email already exists on this release")
	ErrAlreadyAccepted  = errors.New("invitation has already been accepted")
	ErrNoAccount        = errors.New("no account exists for the invited email")
)

// CeilingError rejects a share that would push a release's total
// past 100%.  It carries the current total so the caller can
// compute the remaining headroom.
type CeilingError struct {
	Current   float64
	Requested float64
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("split shares would exceed 100%% (current total: %s%%, requested: %s%%)",
		formatPercent(e.Current), formatPercent(e.Requested))
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// percentEpsilon absorbs DECIMAL-to-float noise so a release can
// genuinely reach exactly 100%.
const percentEpsilon = 1e-9

// ValidateInvite checks the create inputs before any data-store
// interaction.  Exported separately from Create so the pure checks
// are testable without a database.
func ValidateInvite(email string, percent float64) error {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return ErrInvalidEmail
	}
	if percent <= 0 || percent > 100 {
		return ErrInvalidPercent
	}
	return nil
}

// CheckCeiling enforces the 100% ceiling given the release's
// current pending+accepted total and the requested percentage.
func CheckCeiling(current, requested float64) error {
	if current+requested > 100+percentEpsilon {
		return &CeilingError{Current: current, Requested: requested}
	}
	return nil
}

// SplitInviteService implements the split-share invitation
// lifecycle: create, accept, resend.  Both invariants — the 100%
// ceiling and pending-uniqueness per (release, email) — are
// enforced inside a transaction holding a lock on the parent
// release row, so concurrent creates on the same release serialize
// and the check-then-insert is atomic.
type SplitInviteService struct {
	DB       *sql.DB
	Releases *repository.ReleaseRepo
	Shares   *repository.SplitShareRepo
	Users    *repository.UserRepo
	// AcceptBaseURL is the front-end URL the acceptance token is
	// appended to in notification emails.
	AcceptBaseURL string
}

func NewSplitInviteService(db *sql.DB, releases *repository.ReleaseRepo, shares *repository.SplitShareRepo, users *repository.UserRepo, acceptBaseURL string) *SplitInviteService {
	return &SplitInviteService{DB: db, Releases: releases, Shares: shares, Users: users, AcceptBaseURL: acceptBaseURL}
}

// Create validates the invitation, enforces both invariants behind
// the release lock, persists the pending share with a fresh token
// and fires the notification.  The returned bool reports whether
// the notification was delivered to the broker; a false value is
// metadata, not a failure — the share exists either way.
func (s *SplitInviteService) Create(ctx context.Context, inviter model.User, releaseID uint64, email string, percent float64, displayName string) (model.SplitShare, bool, error) {
	if err := ValidateInvite(email, percent); err != nil {
		return model.SplitShare{}, false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = email
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.SplitShare{}, false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	release, err := s.Releases.GetForUpdateTx(ctx, tx, releaseID)
	if err != nil {
		return model.SplitShare{}, false, err
	}
	if release.OwnerID != inviter.ID {
		return model.SplitShare{}, false, repository.ErrForbidden
	}

	// at most one pending invitation per (release, email)
	dup, err := s.Shares.HasPendingTx(ctx, tx, releaseID, email)
	if err != nil {
		return model.SplitShare{}, false, err
	}
	if dup {
		return model.SplitShare{}, false, ErrDuplicatePending
	}

	// pending+accepted shares must stay within 100%
	total, err := s.Shares.SumActivePercentTx(ctx, tx, releaseID)
	if err != nil {
		return model.SplitShare{}, false, err
	}
	if err := CheckCeiling(total, percent); err != nil {
		return model.SplitShare{}, false, err
	}

	token, err := randomToken(32)
	if err != nil {
		return model.SplitShare{}, false, err
	}
	share := model.SplitShare{
		ReleaseID:    releaseID,
		InviteeEmail: email,
		DisplayName:  displayName,
		Percent:      percent,
		Token:        token,
	}
	if err := s.Shares.CreateTx(ctx, tx, &share); err != nil {
		return model.SplitShare{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return model.SplitShare{}, false, err
	}
	committed = true

	notified := s.notifyInvite(ctx, q.KindInviteCreated, inviter, release, share)
	return share, notified, nil
}

// Accept performs the one-way pending→accepted transition for the
// share the token resolves to.  The status change and the linked
// user id are written in one statement inside one transaction, so
// a half-accepted share is never observable.
func (s *SplitInviteService) Accept(ctx context.Context, token string) (model.SplitShare, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.SplitShare{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	share, err := s.Shares.GetByTokenForUpdateTx(ctx, tx, token)
	if err != nil {
		return model.SplitShare{}, err
	}
	if share.Status != model.SharePending {
		return model.SplitShare{}, ErrAlreadyAccepted
	}
	user, err := s.Users.GetByEmail(ctx, share.InviteeEmail)
	if err == sql.ErrNoRows {
		// distinct from a broken token: the invitee simply has not
		// registered yet
		return model.SplitShare{}, ErrNoAccount
	}
	if err != nil {
		return model.SplitShare{}, err
	}
	if err := s.Shares.AcceptTx(ctx, tx, share.ID, user.ID); err != nil {
		return model.SplitShare{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.SplitShare{}, err
	}
	committed = true

	share.Status = model.ShareAccepted
	share.UserID = &user.ID
	return share, nil
}

// Resend re-delivers the notification for a still-pending
// invitation.  The share itself is untouched: same token, same
// state.  Returns the share and the delivery flag.
func (s *SplitInviteService) Resend(ctx context.Context, inviter model.User, shareID uint64) (model.SplitShare, bool, error) {
	share, err := s.Shares.GetByID(ctx, shareID)
	if err != nil {
		return model.SplitShare{}, false, err
	}
	release, err := s.Releases.GetByID(ctx, share.ReleaseID)
	if err != nil {
		return model.SplitShare{}, false, err
	}
	if release.OwnerID != inviter.ID {
		return model.SplitShare{}, false, repository.ErrForbidden
	}
	if share.Status != model.SharePending {
		return model.SplitShare{}, false, ErrAlreadyAccepted
	}
	notified := s.notifyInvite(ctx, q.KindInviteResent, inviter, release, share)
	return share, notified, nil
}

// notifyInvite fires the invitation event and swallows publish
// failures, reporting success as a bool.
func (s *SplitInviteService) notifyInvite(ctx context.Context, kind string, inviter model.User, release model.Release, share model.SplitShare) bool {
	err := PublishNotification(ctx, q.NotificationEvent{
		Kind:         kind,
		Recipient:    share.InviteeEmail,
		ReleaseID:    release.ID,
		ReleaseTitle: release.Title,
		InviterName:  inviter.ArtistName,
		Percent:      share.Percent,
		AcceptURL:    s.AcceptBaseURL + share.Token,
		RaisedAt:     time.Now().UTC().Format(time.RFC3339),
	})
	return err == nil
}

// randomToken generates a cryptographically random hex string of
// n bytes (2n characters).
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
