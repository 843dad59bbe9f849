package model

import "time"

// Release represents a catalogue release (single, EP or album)
// created by an artist.  The owner never changes after creation;
// royalty attribution treats the owning user as the implicit 100%
// claimant minus any accepted split shares.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – user who created the release; immutable.
//  Title       – release title.
//  CatalogueNo – distributor catalogue number; joins stream
//                earnings rows to this release (compared
//                case-insensitively after trimming).
//  UPC         – universal product code, if assigned.
//  ReleaseDate – scheduled or actual release date.
//  Status      – editorial status (DRAFT, SUBMITTED, LIVE, TAKEN_DOWN).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Release struct {
	ID          uint64     // releases.id
	OwnerID     uint64     // releases.owner_id
	Title       string     // releases.title
	CatalogueNo string     // releases.catalogue_no
	UPC         *string    // releases.upc (nullable)
	ReleaseDate *time.Time // releases.release_date (nullable)
	Status      string     // releases.status
	CreatedAt   time.Time  // releases.created_at
	UpdatedAt   time.Time  // releases.updated_at
}

// Editorial statuses stored in releases.status.
const (
	ReleaseDraft     = "DRAFT"
	ReleaseSubmitted = "SUBMITTED"
	ReleaseLive      = "LIVE"
	ReleaseTakenDown = "TAKEN_DOWN"
)

// Track is a single recording belonging to a release.
//
// Fields:
//  ID          – primary key identifier.
//  ReleaseID   – parent release.
//  Title       – track title.
//  ISRC        – international standard recording code, if assigned.
//  DurationSec – runtime in seconds.
//  Position    – 1-based position within the release.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Track struct {
	ID          uint64    // tracks.id
	ReleaseID   uint64    // tracks.release_id
	Title       string    // tracks.title
	ISRC        *string   // tracks.isrc (nullable)
	DurationSec uint32    // tracks.duration_sec
	Position    uint16    // tracks.position
	CreatedAt   time.Time // tracks.created_at
	UpdatedAt   time.Time // tracks.updated_at
}
