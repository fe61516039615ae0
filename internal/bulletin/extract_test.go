package bulletin

import (
	"testing"

	"github.com/cogc-planning/bulletin/internal/catalog"
)

func TestExtractEntries(t *testing.T) {
	cat := catalog.Fallback()
	opts := DefaultOptions()

	t.Run("explicit code on anchor line", func(t *testing.T) {
		text := "jeudi 24/04/2025 CCU003 22:00 06:00"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		e := entries[0]
		if e.Date != "2025-04-24" {
			t.Errorf("Date = %q, want %q", e.Date, "2025-04-24")
		}
		if e.DateDisplay != "24/04/2025" {
			t.Errorf("DateDisplay = %q, want %q", e.DateDisplay, "24/04/2025")
		}
		if e.DayOfWeek != "jeudi" {
			t.Errorf("DayOfWeek = %q, want %q", e.DayOfWeek, "jeudi")
		}
		if e.ServiceCode != "CCU003" {
			t.Errorf("ServiceCode = %q, want %q", e.ServiceCode, "CCU003")
		}
		if e.Tier != TierExplicitSpecific {
			t.Errorf("Tier = %v, want %v", e.Tier, TierExplicitSpecific)
		}
		want := []TimeRange{{Start: "22:00", End: "06:00"}}
		if len(e.ScheduleTimes) != 1 || e.ScheduleTimes[0] != want[0] {
			t.Errorf("ScheduleTimes = %v, want %v", e.ScheduleTimes, want)
		}
	})

	t.Run("code on continuation line", func(t *testing.T) {
		text := "vendredi 25/04/2025\nPoste principal\nCRC001 05:45 13:15"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].ServiceCode != "CRC001" {
			t.Errorf("ServiceCode = %q, want %q", entries[0].ServiceCode, "CRC001")
		}
		if entries[0].Tier != TierExplicitSpecific {
			t.Errorf("Tier = %v, want %v", entries[0].Tier, TierExplicitSpecific)
		}
	})

	t.Run("lookahead limit", func(t *testing.T) {
		// Code sits on the fourth continuation line, one past the default
		// lookahead of three.
		text := "samedi 26/04/2025\nligne 1\nligne 2\nligne 3\nCRC001 05:45 13:15"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].Tier == TierExplicitSpecific {
			t.Errorf("code beyond lookahead resolved to %q", entries[0].ServiceCode)
		}
	})

	t.Run("description fallback", func(t *testing.T) {
		text := "lundi 21/04/2025 Repos périodique"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].ServiceCode != "RP" {
			t.Errorf("ServiceCode = %q, want %q", entries[0].ServiceCode, "RP")
		}
		if entries[0].Tier != TierExplicitGeneric {
			t.Errorf("Tier = %v, want %v", entries[0].Tier, TierExplicitGeneric)
		}
	})

	t.Run("no code and no times", func(t *testing.T) {
		text := "mardi 22/04/2025 intitulé illisible"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].ServiceCode != UnknownCode {
			t.Errorf("ServiceCode = %q, want %q", entries[0].ServiceCode, UnknownCode)
		}
		if entries[0].Tier != TierUnresolved {
			t.Errorf("Tier = %v, want %v", entries[0].Tier, TierUnresolved)
		}
	})

	t.Run("ignorable lines contribute nothing", func(t *testing.T) {
		text := "jeudi 24/04/2025 CCU001 05:45 13:15\nTRAJET 04:30 05:30"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if len(entries[0].ScheduleTimes) != 1 {
			t.Errorf("ScheduleTimes = %v, transit line leaked in", entries[0].ScheduleTimes)
		}
	})

	t.Run("HhMM notation normalized", func(t *testing.T) {
		text := "mercredi 23/04/2025 CENT002 13h15 21h45"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		want := TimeRange{Start: "13:15", End: "21:45"}
		if len(entries[0].ScheduleTimes) != 1 || entries[0].ScheduleTimes[0] != want {
			t.Errorf("ScheduleTimes = %v, want [%v]", entries[0].ScheduleTimes, want)
		}
	})

	t.Run("single digit hour zero padded", func(t *testing.T) {
		text := "mercredi 23/04/2025 CENT001 5h45 13h15"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].ScheduleTimes[0].Start != "05:45" {
			t.Errorf("Start = %q, want %q", entries[0].ScheduleTimes[0].Start, "05:45")
		}
	})

	t.Run("odd trailing time token dropped", func(t *testing.T) {
		text := "jeudi 24/04/2025 CCU001 05:45 13:15 14:00"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if len(entries[0].ScheduleTimes) != 1 {
			t.Errorf("ScheduleTimes = %v, want one pair", entries[0].ScheduleTimes)
		}
	})

	t.Run("invalid calendar date is not an anchor", func(t *testing.T) {
		text := "32/01/2025 CCU001 05:45 13:15"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 0 {
			t.Errorf("got %d entries for impossible date, want 0", len(entries))
		}
	})

	t.Run("two codes on one anchor yield two candidates", func(t *testing.T) {
		// NU and CENT003 share the line: the absence code and the night
		// service replacing it. The times belong to the post code.
		text := "jeudi 24/04/2025 NU CENT003 21:00 05:00"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		byCode := map[string]CandidateEntry{}
		for _, e := range entries {
			byCode[e.ServiceCode] = e
		}
		cent, ok := byCode["CENT003"]
		if !ok {
			t.Fatalf("CENT003 candidate missing, got %v", entries)
		}
		if cent.Tier != TierExplicitSpecific {
			t.Errorf("CENT003 tier = %v, want %v", cent.Tier, TierExplicitSpecific)
		}
		if len(cent.ScheduleTimes) != 1 {
			t.Errorf("CENT003 times = %v, want one pair", cent.ScheduleTimes)
		}
		nu, ok := byCode["NU"]
		if !ok {
			t.Fatalf("NU candidate missing, got %v", entries)
		}
		if nu.Tier != TierExplicitGeneric {
			t.Errorf("NU tier = %v, want %v", nu.Tier, TierExplicitGeneric)
		}
		if len(nu.ScheduleTimes) != 0 {
			t.Errorf("NU times = %v, want none", nu.ScheduleTimes)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		if entries := ExtractEntries("", cat, opts); len(entries) != 0 {
			t.Errorf("got %d entries from empty text, want 0", len(entries))
		}
	})

	t.Run("multiple anchors keep document order", func(t *testing.T) {
		text := "lundi 21/04/2025 RP\nmardi 22/04/2025 CCU001 05:45 13:15\nmercredi 23/04/2025 CCU002 13:15 21:45"
		entries := ExtractEntries(text, cat, opts)
		if len(entries) != 3 {
			t.Fatalf("got %d entries, want 3", len(entries))
		}
		wantDates := []string{"2025-04-21", "2025-04-22", "2025-04-23"}
		for i, want := range wantDates {
			if entries[i].Date != want {
				t.Errorf("entries[%d].Date = %q, want %q", i, entries[i].Date, want)
			}
		}
	})
}
