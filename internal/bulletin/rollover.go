package bulletin

import (
	"sort"

	"github.com/cogc-planning/bulletin/internal/catalog"
)

// RolloverNightShifts re-anchors overnight services to the following calendar
// day, then re-deduplicates: a shift can land an entry on a date that already
// holds the same code natively.
//
// The tie-break on collision is designed, not incidental: the entry natively
// occurring on the target date wins over one arriving via rollover.
func RolloverNightShifts(entries []ResolvedEntry, cat *catalog.Catalog, opts Options) ([]FinalEntry, int) {
	shifted := 0
	finals := make([]FinalEntry, 0, len(entries))

	for _, e := range entries {
		fe := FinalEntry{ResolvedEntry: e}
		if shouldShift(e, cat, &opts) {
			next, err := NextDayISO(e.Date)
			if err == nil {
				fe.DateShiftedFromNight = true
				fe.OriginalDate = e.Date
				fe.OriginalDateDisplay = e.DateDisplay
				fe.Date = next
				if disp, derr := DisplayFromISO(next); derr == nil {
					fe.DateDisplay = disp
				}
				fe.DayOfWeek = FrenchDayName(next)
				shifted++
			}
		}
		finals = append(finals, fe)
	}

	return dedupeFinal(finals), shifted
}

// shouldShift applies the night-rollover predicates: night-marker catalog
// membership, night-suffix naming, late-start night classification, or any
// cross-midnight time pair.
func shouldShift(e ResolvedEntry, cat *catalog.Catalog, opts *Options) bool {
	if cat.IsNightCode(e.ServiceCode) {
		return true
	}
	if opts.hasNightSuffix(e.ServiceCode) {
		return true
	}
	if e.IsNightService && len(e.ScheduleTimes) > 0 {
		if h, ok := parseHour(e.ScheduleTimes[0].Start); ok && h >= 20 {
			return true
		}
	}
	for _, tr := range e.ScheduleTimes {
		if crossesMidnight(tr) {
			return true
		}
	}
	return false
}

// dedupeFinal collapses (date, serviceCode) collisions created by the shift.
// Schedule times concatenate; the non-shifted entry's other attributes win.
func dedupeFinal(finals []FinalEntry) []FinalEntry {
	type key struct{ date, code string }
	index := make(map[key]int)
	out := make([]FinalEntry, 0, len(finals))

	for _, fe := range finals {
		k := key{fe.Date, fe.ServiceCode}
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, fe)
			continue
		}

		kept := out[i]
		if kept.DateShiftedFromNight && !fe.DateShiftedFromNight {
			// Native entry wins as base; keep the merged time lists.
			fe.ScheduleTimes = appendTimes(fe.ScheduleTimes, kept.ScheduleTimes)
			out[i] = fe
		} else {
			out[i].ScheduleTimes = appendTimes(kept.ScheduleTimes, fe.ScheduleTimes)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ServiceCode < out[j].ServiceCode
	})
	return out
}
