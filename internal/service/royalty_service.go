package service

import (
	"context"

	"github.com/soundrail/distro/internal/model"
	"github.com/soundrail/distro/internal/repository"
	"github.com/soundrail/distro/internal/royalty"
)

// ReleaseClaim is one entry of a user's claim listing: a release
// they own or collaborate on, with the resolved role and
// percentage.
type ReleaseClaim struct {
	Release model.Release
	Claim   royalty.Claim
}

// RoyaltyService glues the repositories to the pure attribution
// engine.  It assembles the candidate release set for a user,
// resolves every claim once, and hands the attributed rows to the
// handlers, which derive all five earnings shapes from that single
// set.  The requesting user id is always an explicit parameter.
type RoyaltyService struct {
	Releases *repository.ReleaseRepo
	Shares   *repository.SplitShareRepo
	Earnings *repository.EarningsRepo
	Payouts  *repository.PayoutRepo
}

func NewRoyaltyService(releases *repository.ReleaseRepo, shares *repository.SplitShareRepo, earnings *repository.EarningsRepo, payouts *repository.PayoutRepo) *RoyaltyService {
	return &RoyaltyService{Releases: releases, Shares: shares, Earnings: earnings, Payouts: payouts}
}

// Claims returns every release where the user resolves to owner or
// collaborator, with the resolved percentage.  Releases resolving
// to no access are never part of the candidate set by
// construction: it is built from ownership and the user's own
// accepted shares.
func (s *RoyaltyService) Claims(ctx context.Context, userID uint64) ([]ReleaseClaim, map[uint64]royalty.Claim, error) {
	ownedIDs, err := s.Releases.ListOwnedIDs(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	collabShares, err := s.Shares.ListAcceptedByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	candidateIDs := make([]uint64, 0, len(ownedIDs)+len(collabShares))
	seen := make(map[uint64]struct{}, len(ownedIDs)+len(collabShares))
	for _, id := range ownedIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			candidateIDs = append(candidateIDs, id)
		}
	}
	for _, sh := range collabShares {
		if _, ok := seen[sh.ReleaseID]; !ok {
			seen[sh.ReleaseID] = struct{}{}
			candidateIDs = append(candidateIDs, sh.ReleaseID)
		}
	}
	if len(candidateIDs) == 0 {
		return nil, map[uint64]royalty.Claim{}, nil
	}

	releases, err := s.Releases.ListByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, nil, err
	}
	acceptedByRelease, err := s.Shares.ListAcceptedForReleases(ctx, candidateIDs)
	if err != nil {
		return nil, nil, err
	}

	claims := make(map[uint64]royalty.Claim, len(releases))
	out := make([]ReleaseClaim, 0, len(releases))
	for _, rel := range releases {
		accepted := toAcceptedShares(acceptedByRelease[rel.ID])
		claim := royalty.Resolve(rel.OwnerID, accepted, userID)
		if !claim.HasAccess() {
			continue
		}
		claims[rel.ID] = claim
		out = append(out, ReleaseClaim{Release: rel, Claim: claim})
	}
	return out, claims, nil
}

// AttributedRows fetches the raw earnings for the user's candidate
// releases and applies the resolved claims.  Every earnings and
// analytics endpoint consumes this one result, which is what keeps
// the five shapes mutually consistent.
func (s *RoyaltyService) AttributedRows(ctx context.Context, userID uint64) ([]royalty.AttributedRow, error) {
	_, claims, err := s.Claims(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return nil, nil
	}
	ids := make([]uint64, 0, len(claims))
	for id := range claims {
		ids = append(ids, id)
	}
	raw, err := s.Earnings.ListForReleases(ctx, ids)
	if err != nil {
		return nil, err
	}
	return royalty.Attribute(raw, claims), nil
}

// Balance computes the user's withdrawable balance: total
// attributed earnings minus payouts that are requested or paid.
func (s *RoyaltyService) Balance(ctx context.Context, userID uint64) (float64, error) {
	rows, err := s.AttributedRows(ctx, userID)
	if err != nil {
		return 0, err
	}
	outstanding, err := s.Payouts.SumOutstanding(ctx, userID)
	if err != nil {
		return 0, err
	}
	return royalty.Summarize(rows).Earnings - outstanding, nil
}

func toAcceptedShares(shares []model.SplitShare) []royalty.AcceptedShare {
	out := make([]royalty.AcceptedShare, 0, len(shares))
	for _, sh := range shares {
		if sh.UserID == nil {
			// accepted share with no linked user is a storage anomaly;
			// it still reduces the owner's residual
			out = append(out, royalty.AcceptedShare{Percent: sh.Percent})
			continue
		}
		out = append(out, royalty.AcceptedShare{UserID: *sh.UserID, Percent: sh.Percent})
	}
	return out
}
