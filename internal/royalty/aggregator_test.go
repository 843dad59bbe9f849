package royalty

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(releaseID uint64, platform, territory, reporting, activity string, streams int64, royalty float64, saleType string) EarningRow {
	return EarningRow{
		ReleaseID:       releaseID,
		Platform:        platform,
		Territory:       territory,
		ReportingPeriod: reporting,
		ActivityPeriod:  activity,
		Streams:         streams,
		Royalty:         royalty,
		SaleType:        saleType,
	}
}

func TestIsVoid(t *testing.T) {
	for _, s := range []string{"void", "Void", "VOID", "voided", "Voided", "VOIDED", " void "} {
		assert.True(t, IsVoid(s), "%q should be void", s)
	}
	for _, s := range []string{"sale", "Sale", "", "refund", "avoid"} {
		assert.False(t, IsVoid(s), "%q should not be void", s)
	}
}

// Sole owner keeps the full royalty.
func TestAttributeSoleOwner(t *testing.T) {
	rows := []EarningRow{row(1, "Spotify", "US", "2026-05", "2026-04", 1000, 10.00, "Sale")}
	claims := map[uint64]Claim{1: {Role: RoleOwner, Percent: 100}}

	attributed := Attribute(rows, claims)
	require.Len(t, attributed, 1)
	assert.InDelta(t, 10.00, attributed[0].Attributed, 1e-9)
	assert.Equal(t, int64(1000), attributed[0].Streams)
}

// A 70/30 owner/collaborator split scales the money but not the
// stream count: both parties see the full 1000 streams.
func TestAttributeSplitScalesRoyaltyNotStreams(t *testing.T) {
	rows := []EarningRow{row(1, "Spotify", "US", "2026-05", "2026-04", 1000, 10.00, "Sale")}

	owner := Attribute(rows, map[uint64]Claim{1: {Role: RoleOwner, Percent: 70}})
	collab := Attribute(rows, map[uint64]Claim{1: {Role: RoleCollaborator, Percent: 30}})

	require.Len(t, owner, 1)
	require.Len(t, collab, 1)
	assert.InDelta(t, 7.00, owner[0].Attributed, 1e-9)
	assert.InDelta(t, 3.00, collab[0].Attributed, 1e-9)
	assert.Equal(t, int64(1000), owner[0].Streams)
	assert.Equal(t, int64(1000), collab[0].Streams)
}

func TestAttributeDropsVoidAndNoAccessRows(t *testing.T) {
	rows := []EarningRow{
		row(1, "Spotify", "US", "2026-05", "2026-04", 1000, 10.00, "Sale"),
		row(1, "Spotify", "US", "2026-05", "2026-04", 500, 5.00, "VOIDED"),
		row(2, "Deezer", "FR", "2026-05", "2026-04", 200, 2.00, "Sale"),
	}
	claims := map[uint64]Claim{
		1: {Role: RoleOwner, Percent: 100},
		2: {Role: RoleNone},
	}

	attributed := Attribute(rows, claims)
	require.Len(t, attributed, 1)
	assert.Equal(t, uint64(1), attributed[0].ReleaseID)

	sum := Summarize(attributed)
	assert.Equal(t, int64(1000), sum.Streams)
	assert.InDelta(t, 10.00, sum.Earnings, 1e-9)
}

// Void rows must contribute zero to every shape, whatever the
// flag's casing.
func TestVoidExcludedFromAllShapes(t *testing.T) {
	rows := []EarningRow{
		row(1, "Spotify", "US", "2026-05", "2026-04", 1000, 10.00, "Sale"),
		row(1, "Spotify", "US", "2026-05", "2026-04", 400, 4.00, "Void"),
		row(1, "Tidal", "DE", "2026-04", "2026-03", 300, 3.00, "voided"),
	}
	attributed := Attribute(rows, map[uint64]Claim{1: {Role: RoleOwner, Percent: 100}})

	assert.Equal(t, int64(1000), Summarize(attributed).Streams)
	platforms := ByPlatform(attributed)
	require.Len(t, platforms, 1)
	assert.Equal(t, "Spotify", platforms[0].Key)
	territories := ByTerritory(attributed)
	require.Len(t, territories, 1)
	assert.Equal(t, "US", territories[0].Key)
	periods := ByPeriod(attributed)
	require.Len(t, periods, 1)
	assert.Equal(t, "2026-05", periods[0].ReportingPeriod)
}

func TestByPlatformOrderedByEarningsDesc(t *testing.T) {
	rows := []EarningRow{
		row(1, "Deezer", "US", "2026-05", "2026-04", 5000, 1.00, "sale"),
		row(1, "Spotify", "US", "2026-05", "2026-04", 1000, 10.00, "sale"),
		row(1, "Tidal", "US", "2026-05", "2026-04", 100, 4.00, "sale"),
	}
	groups := ByPlatform(Attribute(rows, map[uint64]Claim{1: {Role: RoleOwner, Percent: 100}}))

	require.Len(t, groups, 3)
	assert.Equal(t, "Spotify", groups[0].Key)
	assert.Equal(t, "Tidal", groups[1].Key)
	assert.Equal(t, "Deezer", groups[2].Key)
}

func TestByTerritoryTopTenByStreams(t *testing.T) {
	var rows []EarningRow
	for i := 0; i < 14; i++ {
		rows = append(rows, row(1, "Spotify", fmt.Sprintf("T%02d", i), "2026-05", "2026-04", int64(100*(i+1)), 1.00, "sale"))
	}
	groups := ByTerritory(Attribute(rows, map[uint64]Claim{1: {Role: RoleOwner, Percent: 100}}))

	require.Len(t, groups, 10)
	assert.Equal(t, "T13", groups[0].Key)
	assert.Equal(t, int64(1400), groups[0].Streams)
	assert.Equal(t, "T04", groups[9].Key)
	// the limit must come after sorting, so the biggest territories survive
	for i := 1; i < len(groups); i++ {
		assert.GreaterOrEqual(t, groups[i-1].Streams, groups[i].Streams)
	}
}

func TestByPeriodGroupsPairsAndOrdersDesc(t *testing.T) {
	rows := []EarningRow{
		row(1, "Spotify", "US", "2026-04", "2026-03", 100, 1.00, "sale"),
		row(1, "Spotify", "US", "2026-05", "2026-04", 200, 2.00, "sale"),
		row(1, "Tidal", "DE", "2026-05", "2026-04", 50, 0.50, "sale"),
		row(1, "Spotify", "US", "2026-05", "2026-03", 10, 0.10, "sale"),
	}
	periods := ByPeriod(Attribute(rows, map[uint64]Claim{1: {Role: RoleOwner, Percent: 100}}))

	require.Len(t, periods, 3)
	assert.Equal(t, "2026-05", periods[0].ReportingPeriod)
	assert.Equal(t, "2026-04", periods[0].ActivityPeriod)
	assert.Equal(t, int64(250), periods[0].Streams)
	assert.Equal(t, "2026-05", periods[1].ReportingPeriod)
	assert.Equal(t, "2026-03", periods[1].ActivityPeriod)
	assert.Equal(t, "2026-04", periods[2].ReportingPeriod)
}

// The by-period grouping is exhaustive, so its earnings total must
// equal the summary total exactly for any claim mix.
func TestSummaryMatchesByPeriodTotal(t *testing.T) {
	rows := []EarningRow{
		row(1, "Spotify", "US", "2026-05", "2026-04", 1000, 10.00, "sale"),
		row(1, "Deezer", "FR", "2026-05", "2026-04", 300, 2.40, "sale"),
		row(2, "Spotify", "US", "2026-04", "2026-03", 700, 6.15, "sale"),
		row(2, "Tidal", "DE", "2026-04", "2026-04", 120, 0.80, "VOID"),
		row(3, "Spotify", "GB", "2026-03", "2026-02", 40, 0.33, "sale"),
	}
	claims := map[uint64]Claim{
		1: {Role: RoleOwner, Percent: 62.5},
		2: {Role: RoleCollaborator, Percent: 30},
		3: {Role: RoleNone},
	}
	attributed := Attribute(rows, claims)

	var periodTotal float64
	var periodStreams int64
	for _, p := range ByPeriod(attributed) {
		periodTotal += p.Earnings
		periodStreams += p.Streams
	}
	sum := Summarize(attributed)
	assert.InDelta(t, sum.Earnings, periodTotal, 1e-9)
	assert.Equal(t, sum.Streams, periodStreams)

	// by-platform is exhaustive too; only territory may truncate
	var platformTotal float64
	for _, g := range ByPlatform(attributed) {
		platformTotal += g.Earnings
	}
	assert.InDelta(t, sum.Earnings, platformTotal, 1e-9)
}

func TestAttributeEmptyInputs(t *testing.T) {
	assert.Empty(t, Attribute(nil, nil))
	assert.Empty(t, Attribute([]EarningRow{row(1, "Spotify", "US", "2026-05", "2026-04", 1, 1, "sale")}, nil))
	sum := Summarize(nil)
	assert.Zero(t, sum.Streams)
	assert.Zero(t, sum.Earnings)
}
