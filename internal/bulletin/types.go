// Package bulletin implements the duty-roster parsing core: OCR text in,
// normalized dated service entries out.
package bulletin

import "time"

// UnknownCode is the sentinel for a date anchor whose service code could not
// be resolved by any tier. Surfaced to callers for manual correction.
const UnknownCode = "UNKNOWN"

// ResolutionTier is the confidence level at which a service code was resolved.
// Higher values win during deduplication.
type ResolutionTier int

const (
	TierUnresolved ResolutionTier = iota
	TierTimeInferred
	TierExplicitGeneric
	TierExplicitSpecific
)

func (t ResolutionTier) String() string {
	switch t {
	case TierExplicitSpecific:
		return "explicit-specific"
	case TierExplicitGeneric:
		return "explicit-generic"
	case TierTimeInferred:
		return "time-inferred"
	default:
		return "unresolved"
	}
}

// MarshalText lets tiers render as their names in JSON/YAML output.
func (t ResolutionTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TimeRange is one schedule segment, "HH:MM" start and end.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CandidateEntry is one raw (date, code-or-unknown) pairing found in the text.
// Dates are ISO "2006-01-02"; DateDisplay keeps the original "02/01/2006".
type CandidateEntry struct {
	Date          string         `json:"date"`
	DateDisplay   string         `json:"date_display"`
	DayOfWeek     string         `json:"day_of_week,omitempty"`
	ServiceCode   string         `json:"service_code"`
	ScheduleTimes []TimeRange    `json:"schedule_times,omitempty"`
	Tier          ResolutionTier `json:"tier"`
	RawContext    string         `json:"raw_context,omitempty"`
}

// ResolvedEntry is the deduplicated, one-per-(date, code) result.
type ResolvedEntry struct {
	CandidateEntry
	IsValidCode    bool `json:"is_valid_code"`
	IsNightService bool `json:"is_night_service"`
}

// FinalEntry is the post-rollover result. When a night service is re-anchored
// to the following day, the pre-shift date is preserved for audit/display.
type FinalEntry struct {
	ResolvedEntry
	DateShiftedFromNight bool   `json:"date_shifted_from_night"`
	OriginalDate         string `json:"original_date,omitempty"`
	OriginalDateDisplay  string `json:"original_date_display,omitempty"`
}

// Metadata holds header fields extracted from the bulletin text. Fields not
// found in the text stay empty; that is not an error.
type Metadata struct {
	AgentName       string `json:"agent_name,omitempty"`
	PersonnelNumber string `json:"personnel_number,omitempty"`
	EditionDate     string `json:"edition_date,omitempty"`
	PeriodStart     string `json:"period_start,omitempty"`
	PeriodEnd       string `json:"period_end,omitempty"`
}

// Stats summarizes one parse run.
type Stats struct {
	TotalEntries   int           `json:"total_entries"`
	ValidEntries   int           `json:"valid_entries"`
	UnknownEntries int           `json:"unknown_entries"`
	NightShifted   int           `json:"night_shifted"`
	Pages          int           `json:"pages,omitempty"`
	TextSource     string        `json:"text_source,omitempty"` // "ocr", "text-layer" or "llm"
	Duration       time.Duration `json:"duration_ns"`
}

// Result is the orchestrator's structured outcome. Success=false carries an
// Error string; the pipeline never panics or errors past this boundary.
type Result struct {
	Success  bool         `json:"success"`
	RunID    string       `json:"run_id,omitempty"`
	Metadata Metadata     `json:"metadata"`
	Entries  []FinalEntry `json:"entries"`
	Stats    Stats        `json:"stats"`
	Error    string       `json:"error,omitempty"`
}
