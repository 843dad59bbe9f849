package royalty

import (
	"sort"
	"strings"
)

// EarningRow is a raw stream-earnings row already joined to a
// release.  Rows whose catalogue number matched no release never
// reach the aggregator; the repository join drops them.
type EarningRow struct {
	ReleaseID       uint64
	ReleaseTitle    string
	Platform        string
	Territory       string
	ReportingPeriod string
	ActivityPeriod  string
	Streams         int64
	Royalty         float64
	SaleType        string
}

// AttributedRow is an earnings row scaled to a user's claim.
// Streams stay unscaled on purpose: a collaborator sees the full
// audience reach of a release they partially own, while Attributed
// carries only their proportional slice of the money.
type AttributedRow struct {
	EarningRow
	SharePercent float64
	Attributed   float64
}

// Summary holds the overall totals across all attributed rows.
type Summary struct {
	Streams  int64   `json:"streams"`
	Earnings float64 `json:"earnings"`
}

// GroupSlice is one bucket of a by-platform or by-territory
// breakdown.
type GroupSlice struct {
	Key      string  `json:"key"`
	Streams  int64   `json:"streams"`
	Earnings float64 `json:"earnings"`
}

// PeriodSlice is one bucket of the by-period breakdown, keyed by
// the (reporting period, activity period) pair.
type PeriodSlice struct {
	ReportingPeriod string  `json:"reporting_period"`
	ActivityPeriod  string  `json:"activity_period"`
	Streams         int64   `json:"streams"`
	Earnings        float64 `json:"earnings"`
}

// territoryLimit caps the by-territory breakdown to the top
// territories by stream count.
const territoryLimit = 10

// IsVoid reports whether a sale-or-void flag marks the row as
// void.  DSP reports are inconsistent about casing and sometimes
// deliver "voided" instead of "void", so the match is a
// case-insensitive prefix check.
func IsVoid(saleType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(saleType)), "void")
}

// Attribute applies the resolved claims to the raw rows and
// returns the attributed set every aggregation shape is derived
// from.  Void rows and rows for releases the claims map grants no
// access to are dropped here, once, so the five views can never
// disagree about which rows count.
func Attribute(rows []EarningRow, claims map[uint64]Claim) []AttributedRow {
	out := make([]AttributedRow, 0, len(rows))
	for _, row := range rows {
		if IsVoid(row.SaleType) {
			continue
		}
		claim, ok := claims[row.ReleaseID]
		if !ok || !claim.HasAccess() {
			continue
		}
		out = append(out, AttributedRow{
			EarningRow:   row,
			SharePercent: claim.Percent,
			Attributed:   row.Royalty * claim.Percent / 100,
		})
	}
	return out
}

// Summarize totals streams and attributed earnings across the
// attributed rows.
func Summarize(rows []AttributedRow) Summary {
	var s Summary
	for _, r := range rows {
		s.Streams += r.Streams
		s.Earnings += r.Attributed
	}
	return s
}

// ByPlatform groups attributed rows per DSP, ordered by earnings
// descending.
func ByPlatform(rows []AttributedRow) []GroupSlice {
	groups := groupBy(rows, func(r AttributedRow) string { return r.Platform })
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Earnings > groups[j].Earnings })
	return groups
}

// ByTerritory groups attributed rows per territory, ordered by
// stream count descending and limited to the top ten.
func ByTerritory(rows []AttributedRow) []GroupSlice {
	groups := groupBy(rows, func(r AttributedRow) string { return r.Territory })
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Streams > groups[j].Streams })
	if len(groups) > territoryLimit {
		groups = groups[:territoryLimit]
	}
	return groups
}

// ByPeriod groups attributed rows by the (reporting, activity)
// period pair, ordered by reporting period descending then
// activity period descending.  Unlike the territory view this
// grouping is exhaustive, so its earnings total always equals the
// summary total.
func ByPeriod(rows []AttributedRow) []PeriodSlice {
	idx := make(map[[2]string]int)
	var out []PeriodSlice
	for _, r := range rows {
		key := [2]string{r.ReportingPeriod, r.ActivityPeriod}
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, PeriodSlice{ReportingPeriod: r.ReportingPeriod, ActivityPeriod: r.ActivityPeriod})
		}
		out[i].Streams += r.Streams
		out[i].Earnings += r.Attributed
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReportingPeriod != out[j].ReportingPeriod {
			return out[i].ReportingPeriod > out[j].ReportingPeriod
		}
		return out[i].ActivityPeriod > out[j].ActivityPeriod
	})
	return out
}

// groupBy buckets rows by an arbitrary string key, preserving
// first-seen order before the callers re-sort.
func groupBy(rows []AttributedRow, key func(AttributedRow) string) []GroupSlice {
	idx := make(map[string]int)
	var out []GroupSlice
	for _, r := range rows {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, GroupSlice{Key: k})
		}
		out[i].Streams += r.Streams
		out[i].Earnings += r.Attributed
	}
	return out
}
