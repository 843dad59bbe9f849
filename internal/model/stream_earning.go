package model

import "time"

// StreamEarning is one row of the DSP royalty reports ingested by
// the admin CSV import.  Rows are read-only to the attribution
// engine: it joins them to releases via the catalogue number and
// scales the royalty amount by the caller's resolved percentage.
// A row whose sale_type reads as a void (any casing of "void" or
// "voided") is excluded from every stream and earnings sum.
//
// Fields:
//  ID              – primary key identifier.
//  CatalogueNo     – catalogue number as reported by the DSP; the
//                    join to releases is normalized (trim + upper)
//                    and rows with no matching release are simply
//                    never attributed.
//  Platform        – DSP name (Spotify, Apple Music, ...).
//  Territory       – ISO country or region code of the streams.
//  ReportingPeriod – period the DSP reported in, e.g. "2026-05".
//  ActivityPeriod  – period the streams occurred in.
//  Streams         – raw stream count.
//  Royalty         – raw royalty amount in account currency.
//  SaleType        – sale-or-void flag text as delivered.
//  ImportedAt      – when the row was ingested.
type StreamEarning struct {
	ID              uint64    // stream_earnings.id
	CatalogueNo     string    // stream_earnings.catalogue_no
	Platform        string    // stream_earnings.platform
	Territory       string    // stream_earnings.territory
	ReportingPeriod string    // stream_earnings.reporting_period
	ActivityPeriod  string    // stream_earnings.activity_period
	Streams         int64     // stream_earnings.streams
	Royalty         float64   // stream_earnings.royalty (DECIMAL(14,6))
	SaleType        string    // stream_earnings.sale_type
	ImportedAt      time.Time // stream_earnings.imported_at
}
