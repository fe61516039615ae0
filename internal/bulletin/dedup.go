package bulletin

import (
	"github.com/cogc-planning/bulletin/internal/catalog"
)

// Deduplicate selects, per date, the best candidates by resolution tier and
// collapses same-code duplicates. Output holds at most one entry per
// (date, serviceCode) pair.
//
// Any explicit candidate on a date discards the time-inferred and unresolved
// ones; the two explicit tiers coexist, so an absence code and a distinct
// post code both survive for the same day. When only weak candidates exist,
// they all merge into one representative (times concatenated, inference
// re-run on the merged list, longest raw context wins as base).
func Deduplicate(cands []CandidateEntry, cat *catalog.Catalog, opts Options) []ResolvedEntry {
	byDate := groupByDate(cands)

	var out []ResolvedEntry
	for _, group := range byDate {
		winners := selectWinners(group)

		if winners[0].Tier <= TierTimeInferred {
			out = append(out, resolveEntry(mergeWeakGroup(winners), cat, &opts))
			continue
		}

		for _, merged := range mergeByCode(winners) {
			out = append(out, resolveEntry(merged, cat, &opts))
		}
	}
	return out
}

// groupByDate buckets candidates by date, preserving first-appearance order
// of both dates and candidates within a date.
func groupByDate(cands []CandidateEntry) [][]CandidateEntry {
	index := make(map[string]int)
	var groups [][]CandidateEntry
	for _, c := range cands {
		i, ok := index[c.Date]
		if !ok {
			i = len(groups)
			index[c.Date] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], c)
	}
	return groups
}

// selectWinners returns the surviving candidates for one date. Explicit
// candidates of either tier all survive; otherwise only the single highest
// weak tier does.
func selectWinners(group []CandidateEntry) []CandidateEntry {
	best := TierUnresolved
	for _, c := range group {
		if c.Tier > best {
			best = c.Tier
		}
	}
	cutoff := best
	if best >= TierExplicitGeneric {
		cutoff = TierExplicitGeneric
	}
	var winners []CandidateEntry
	for _, c := range group {
		if c.Tier >= cutoff {
			winners = append(winners, c)
		}
	}
	return winners
}

// mergeWeakGroup collapses a time-inferred or unresolved tier group into one
// representative entry. Merging the schedule fragments can upgrade the code:
// inference re-runs on the concatenated time list.
func mergeWeakGroup(group []CandidateEntry) CandidateEntry {
	base := group[0]
	for _, c := range group[1:] {
		if len(c.RawContext) > len(base.RawContext) {
			base = c
		}
	}

	var times []TimeRange
	for _, c := range group {
		times = appendTimes(times, c.ScheduleTimes)
	}
	base.ScheduleTimes = times

	if code, ok := InferShiftCode(times); ok {
		base.ServiceCode = code
		base.Tier = TierTimeInferred
	} else {
		base.ServiceCode = UnknownCode
		base.Tier = TierUnresolved
	}
	return base
}

// mergeByCode collapses same-code duplicates within a tier group,
// concatenating schedule times. First occurrence is the base.
func mergeByCode(group []CandidateEntry) []CandidateEntry {
	index := make(map[string]int)
	var merged []CandidateEntry
	for _, c := range group {
		i, ok := index[c.ServiceCode]
		if !ok {
			index[c.ServiceCode] = len(merged)
			merged = append(merged, c)
			continue
		}
		merged[i].ScheduleTimes = appendTimes(merged[i].ScheduleTimes, c.ScheduleTimes)
	}
	return merged
}

// appendTimes concatenates time lists without duplicating identical pairs.
func appendTimes(dst []TimeRange, src []TimeRange) []TimeRange {
	for _, tr := range src {
		if !containsTime(dst, tr) {
			dst = append(dst, tr)
		}
	}
	return dst
}

func containsTime(list []TimeRange, tr TimeRange) bool {
	for _, have := range list {
		if have == tr {
			return true
		}
	}
	return false
}

// resolveEntry derives the catalog-dependent flags for a merged candidate.
func resolveEntry(c CandidateEntry, cat *catalog.Catalog, opts *Options) ResolvedEntry {
	inferred, ok := InferShiftCode(c.ScheduleTimes)
	night := cat.IsNightCode(c.ServiceCode) ||
		opts.hasNightSuffix(c.ServiceCode) ||
		(ok && inferred == "NUIT")

	return ResolvedEntry{
		CandidateEntry: c,
		IsValidCode:    cat.Has(c.ServiceCode),
		IsNightService: night,
	}
}
