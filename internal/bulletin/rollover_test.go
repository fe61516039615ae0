package bulletin

import (
	"testing"

	"github.com/cogc-planning/bulletin/internal/catalog"
)

func resolved(date, code string, tier ResolutionTier, night bool, times ...TimeRange) ResolvedEntry {
	display, _ := DisplayFromISO(date)
	return ResolvedEntry{
		CandidateEntry: CandidateEntry{
			Date:          date,
			DateDisplay:   display,
			DayOfWeek:     FrenchDayName(date),
			ServiceCode:   code,
			ScheduleTimes: times,
			Tier:          tier,
		},
		IsValidCode:    true,
		IsNightService: night,
	}
}

func TestRolloverNightShifts(t *testing.T) {
	cat := catalog.Fallback()
	opts := DefaultOptions()

	t.Run("night code shifts one day", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-04-24", "CCU003", TierExplicitSpecific, true,
				TimeRange{Start: "22:00", End: "06:00"}),
		}
		out, shifted := RolloverNightShifts(in, cat, opts)
		if shifted != 1 {
			t.Fatalf("shifted = %d, want 1", shifted)
		}
		if len(out) != 1 {
			t.Fatalf("got %d entries, want 1", len(out))
		}
		e := out[0]
		if !e.DateShiftedFromNight {
			t.Error("DateShiftedFromNight = false")
		}
		if e.Date != "2025-04-25" {
			t.Errorf("Date = %q, want %q", e.Date, "2025-04-25")
		}
		if e.OriginalDate != "2025-04-24" {
			t.Errorf("OriginalDate = %q, want %q", e.OriginalDate, "2025-04-24")
		}
		if e.DateDisplay != "25/04/2025" {
			t.Errorf("DateDisplay = %q, want %q", e.DateDisplay, "25/04/2025")
		}
		if e.OriginalDateDisplay != "24/04/2025" {
			t.Errorf("OriginalDateDisplay = %q, want %q", e.OriginalDateDisplay, "24/04/2025")
		}
		if e.DayOfWeek != "vendredi" {
			t.Errorf("DayOfWeek = %q, want %q", e.DayOfWeek, "vendredi")
		}
	})

	t.Run("day services pass through", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-04-24", "CCU001", TierExplicitSpecific, false,
				TimeRange{Start: "05:45", End: "13:15"}),
			resolved("2025-04-25", "RP", TierExplicitGeneric, false),
		}
		out, shifted := RolloverNightShifts(in, cat, opts)
		if shifted != 0 {
			t.Errorf("shifted = %d, want 0", shifted)
		}
		for _, e := range out {
			if e.DateShiftedFromNight {
				t.Errorf("%s/%s shifted, want pass-through", e.Date, e.ServiceCode)
			}
		}
	})

	t.Run("month boundary", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-01-31", "CCU003", TierExplicitSpecific, true,
				TimeRange{Start: "22:00", End: "06:00"}),
		}
		out, _ := RolloverNightShifts(in, cat, opts)
		if out[0].Date != "2025-02-01" {
			t.Errorf("Date = %q, want %q", out[0].Date, "2025-02-01")
		}
	})

	t.Run("year boundary", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-12-31", "CCU003", TierExplicitSpecific, true,
				TimeRange{Start: "22:00", End: "06:00"}),
		}
		out, _ := RolloverNightShifts(in, cat, opts)
		if out[0].Date != "2026-01-01" {
			t.Errorf("Date = %q, want %q", out[0].Date, "2026-01-01")
		}
	})

	t.Run("night suffix alone triggers shift", func(t *testing.T) {
		// Code unknown to the catalog but carrying the night suffix.
		in := []ResolvedEntry{
			resolved("2025-04-24", "XYZ003", TierExplicitSpecific, false),
		}
		out, shifted := RolloverNightShifts(in, cat, opts)
		if shifted != 1 {
			t.Fatalf("shifted = %d, want 1", shifted)
		}
		if out[0].Date != "2025-04-25" {
			t.Errorf("Date = %q, want %q", out[0].Date, "2025-04-25")
		}
	})

	t.Run("cross midnight times alone trigger shift", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-04-24", "NUIT", TierTimeInferred, true,
				TimeRange{Start: "21:00", End: "05:00"}),
		}
		_, shifted := RolloverNightShifts(in, cat, opts)
		if shifted != 1 {
			t.Errorf("shifted = %d, want 1", shifted)
		}
	})

	t.Run("shift collision keeps native entry as base", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-04-24", "CCU003", TierExplicitSpecific, true,
				TimeRange{Start: "22:00", End: "06:00"}),
			resolved("2025-04-25", "CCU003", TierExplicitSpecific, true,
				TimeRange{Start: "23:00", End: "07:00"}),
		}
		out, shifted := RolloverNightShifts(in, cat, opts)
		if shifted != 2 {
			t.Errorf("shifted = %d, want 2", shifted)
		}
		// Both entries shift: the 24th lands on the 25th and the 25th on the
		// 26th, so no collision remains.
		byDate := map[string]FinalEntry{}
		for _, e := range out {
			byDate[e.Date] = e
		}
		if _, ok := byDate["2025-04-25"]; !ok {
			t.Errorf("no entry on 2025-04-25 after shift, got %v", out)
		}
		if _, ok := byDate["2025-04-26"]; !ok {
			t.Errorf("no entry on 2025-04-26 after shift, got %v", out)
		}
	})

	t.Run("shift onto native same code merges into native entry", func(t *testing.T) {
		in := []ResolvedEntry{
			// Cross-midnight times shift the 24th onto the 25th, colliding
			// with the native morning entry already holding the same code.
			resolved("2025-04-24", "CCU001", TierExplicitSpecific, true,
				TimeRange{Start: "22:00", End: "06:00"}),
			resolved("2025-04-25", "CCU001", TierExplicitSpecific, false,
				TimeRange{Start: "05:45", End: "13:15"}),
		}
		out, shifted := RolloverNightShifts(in, cat, opts)
		if shifted != 1 {
			t.Fatalf("shifted = %d, want 1", shifted)
		}
		if len(out) != 1 {
			t.Fatalf("got %d entries, want 1: %v", len(out), out)
		}
		e := out[0]
		if e.Date != "2025-04-25" {
			t.Errorf("Date = %q, want %q", e.Date, "2025-04-25")
		}
		// Native entry wins as base, so the collision is not marked shifted.
		if e.DateShiftedFromNight {
			t.Error("merged entry marked as shifted, native base should win")
		}
		if len(e.ScheduleTimes) != 2 {
			t.Errorf("ScheduleTimes = %v, want both time lists merged", e.ScheduleTimes)
		}
	})

	t.Run("no duplicate pairs after rollover", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-04-24", "RP", TierExplicitGeneric, false),
			resolved("2025-04-24", "CCU003", TierExplicitSpecific, true,
				TimeRange{Start: "22:00", End: "06:00"}),
			resolved("2025-04-25", "CCU003", TierExplicitSpecific, true,
				TimeRange{Start: "22:00", End: "06:00"}),
		}
		out, _ := RolloverNightShifts(in, cat, opts)
		seen := map[string]bool{}
		for _, e := range out {
			k := e.Date + "/" + e.ServiceCode
			if seen[k] {
				t.Fatalf("duplicate (date, code) pair %s in %v", k, out)
			}
			seen[k] = true
		}
	})

	t.Run("output sorted by date", func(t *testing.T) {
		in := []ResolvedEntry{
			resolved("2025-04-26", "CCU001", TierExplicitSpecific, false),
			resolved("2025-04-24", "CCU001", TierExplicitSpecific, false),
			resolved("2025-04-25", "RP", TierExplicitGeneric, false),
		}
		out, _ := RolloverNightShifts(in, cat, opts)
		for i := 1; i < len(out); i++ {
			if out[i].Date < out[i-1].Date {
				t.Fatalf("output not sorted: %s before %s", out[i-1].Date, out[i].Date)
			}
		}
	})
}
