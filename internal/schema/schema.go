// Package schema fixes the canonical trip-table shape shared by both
// quarterly input formats, plus the rename/relabel maps that unify the legacy
// format with it. The maps are total over the columns the analysis touches;
// anything outside them is either pruned or passed through untouched.
package schema

// Canonical column names (the modern export's naming convention).
const (
	ColRideID           = "ride_id"
	ColRideableType     = "rideable_type"
	ColStartedAt        = "started_at"
	ColEndedAt          = "ended_at"
	ColStartStationName = "start_station_name"
	ColStartStationID   = "start_station_id"
	ColEndStationName   = "end_station_name"
	ColEndStationID     = "end_station_id"
	ColMemberCasual     = "member_casual"
)

// Derived column names added during cleaning.
const (
	ColDate       = "date"
	ColMonth      = "month"
	ColDay        = "day"
	ColYear       = "year"
	ColDayOfWeek  = "day_of_week"
	ColRideLength = "ride_length" // seconds, float64
)

// Canonical rider segment labels.
const (
	SegmentMember = "member"
	SegmentCasual = "casual"
)

// MaintenanceStation is the start-station sentinel used for service and QC
// trips; rows starting there are not customer rides.
const MaintenanceStation = "HQ QR"

// LegacyHeaderMap renames the legacy export's headers to the canonical names.
// It is applied at parse time so the two tables concatenate cleanly. Both id
// columns load as text like every other cell, which also settles the dtype
// mismatch the legacy format has on ride_id and rideable_type.
var LegacyHeaderMap = map[string]string{
	"trip_id":           ColRideID,
	"bikeid":            ColRideableType,
	"start_time":        ColStartedAt,
	"end_time":          ColEndedAt,
	"from_station_name": ColStartStationName,
	"from_station_id":   ColStartStationID,
	"to_station_name":   ColEndStationName,
	"to_station_id":     ColEndStationID,
	"usertype":          ColMemberCasual,
}

// RequiredColumns must be present in both unified tables before they may be
// concatenated; a gap here is a schema mismatch, not a data-quality issue.
var RequiredColumns = []string{
	ColRideID,
	ColRideableType,
	ColStartedAt,
	ColEndedAt,
	ColStartStationName,
	ColStartStationID,
	ColEndStationName,
	ColEndStationID,
	ColMemberCasual,
}

// DropColumns are source-specific fields the analysis never reads:
// coordinates, rider demographics, and the legacy precomputed duration.
// Absence is fine; pruning is best-effort by design of the outer union.
var DropColumns = []string{
	"start_lat",
	"start_lng",
	"end_lat",
	"end_lng",
	"birthyear",
	"gender",
	"tripduration",
}

// LabelMap exhaustively maps every known segment spelling to a canonical
// label. Canonical labels map to themselves so relabeling is idempotent.
var LabelMap = map[string]string{
	"Subscriber":  SegmentMember,
	"Customer":    SegmentCasual,
	SegmentMember: SegmentMember,
	SegmentCasual: SegmentCasual,
}

// TimestampLayouts are tried in order when coercing the start/end columns.
// The quarterly exports use the first; the RFC 3339 forms cover re-exported
// data that went through other tooling.
var TimestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
}
