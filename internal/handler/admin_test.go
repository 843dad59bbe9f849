package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchHeader(t *testing.T) {
	assert.True(t, matchHeader([]string{"catalogue_no", "platform", "territory", "reporting_period", "activity_period", "streams", "royalty", "sale_type"}))
	assert.True(t, matchHeader([]string{"Catalogue_No", " platform", "TERRITORY", "reporting_period", "activity_period", "streams", "royalty", "sale_type"}),
		"header matching ignores case and padding")
	assert.False(t, matchHeader([]string{"catalogue_no", "platform"}), "short header")
	assert.False(t, matchHeader([]string{"platform", "catalogue_no", "territory", "reporting_period", "activity_period", "streams", "royalty", "sale_type"}),
		"column order matters")
}

func TestParseImportRecord(t *testing.T) {
	row, ok := parseImportRecord([]string{"CAT-001", "Spotify", "US", "2026-07", "2026-05", "1200", "4.8312", "sale"})
	require.True(t, ok)
	assert.Equal(t, "CAT-001", row.CatalogueNo)
	assert.Equal(t, int64(1200), row.Streams)
	assert.InDelta(t, 4.8312, row.Royalty, 1e-12)
	assert.Equal(t, "sale", row.SaleType)

	t.Run("trims whitespace", func(t *testing.T) {
		row, ok := parseImportRecord([]string{" CAT-001 ", " Spotify", "US", "2026-07", "2026-05", "10", "0.05", " Void "})
		require.True(t, ok)
		assert.Equal(t, "CAT-001", row.CatalogueNo)
		assert.Equal(t, "Void", row.SaleType, "sale type is stored as delivered; void filtering happens at read time")
	})

	t.Run("rejects malformed rows", func(t *testing.T) {
		bad := [][]string{
			{"CAT-001", "Spotify", "US", "2026-07", "2026-05", "1200"},                           // short record
			{"", "Spotify", "US", "2026-07", "2026-05", "1200", "4.83", "sale"},                  // missing catalogue no
			{"CAT-001", "", "US", "2026-07", "2026-05", "1200", "4.83", "sale"},                  // missing platform
			{"CAT-001", "Spotify", "US", "2026-07", "2026-05", "twelve", "4.83", "sale"},         // non-numeric streams
			{"CAT-001", "Spotify", "US", "2026-07", "2026-05", "-5", "4.83", "sale"},             // negative streams
			{"CAT-001", "Spotify", "US", "2026-07", "2026-05", "1200", "four dollars", "sale"},   // non-numeric royalty
		}
		for _, record := range bad {
			_, ok := parseImportRecord(record)
			assert.False(t, ok, "record %v should be rejected", record)
		}
	})

	t.Run("negative royalty is a valid adjustment row", func(t *testing.T) {
		row, ok := parseImportRecord([]string{"CAT-001", "Spotify", "US", "2026-07", "2026-05", "0", "-1.25", "adjustment"})
		require.True(t, ok)
		assert.Equal(t, -1.25, row.Royalty)
	})
}
