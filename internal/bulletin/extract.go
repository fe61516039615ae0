package bulletin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cogc-planning/bulletin/internal/catalog"
)

var (
	dateAnchorRe = regexp.MustCompile(`\b(\d{2}/\d{2}/\d{4})\b`)
	dayNameRe    = regexp.MustCompile(`(?i)\b(lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche)\b`)
)

// ExtractEntries walks the bulletin text line by line and collects one raw
// candidate entry per date anchor. A line holding a DD/MM/YYYY token starts a
// candidate; everything up to the next anchor is continuation belonging to it.
// Pure transformation; "nothing found" is an empty slice, not an error.
func ExtractEntries(text string, cat *catalog.Catalog, opts Options) []CandidateEntry {
	lines := strings.Split(text, "\n")

	// Anchor positions first, so each candidate knows where its block ends.
	var anchors []int
	for i, line := range lines {
		if opts.isIgnorableLine(line) {
			continue
		}
		if m := dateAnchorRe.FindStringSubmatch(line); m != nil {
			if _, err := ParseDisplayDate(m[1]); err == nil {
				anchors = append(anchors, i)
			}
		}
	}

	entries := make([]CandidateEntry, 0, len(anchors))
	for n, idx := range anchors {
		end := len(lines)
		if n+1 < len(anchors) {
			end = anchors[n+1]
		}
		entries = append(entries, buildCandidates(lines, idx, end, cat, &opts)...)
	}
	return entries
}

// buildCandidates assembles the candidates for one anchor line and its
// continuation block [anchor+1, end). A block usually yields one candidate,
// but an anchor carrying several explicit codes (an absence code next to the
// night service replacing it) yields one per code. When specific and generic
// codes share a block, the schedule times belong to the specific ones:
// absence codes have no schedule.
func buildCandidates(lines []string, anchor, end int, cat *catalog.Catalog, opts *Options) []CandidateEntry {
	line := lines[anchor]
	display := dateAnchorRe.FindStringSubmatch(line)[1]
	iso, err := ISOFromDisplay(display)
	if err != nil {
		return nil
	}

	base := CandidateEntry{
		Date:        iso,
		DateDisplay: display,
		ServiceCode: UnknownCode,
		Tier:        TierUnresolved,
	}
	if m := dayNameRe.FindStringSubmatch(line); m != nil {
		base.DayOfWeek = strings.ToLower(m[1])
	}
	base.RawContext = buildRawContext(lines, anchor, end, opts.MaxRawContext)

	// Tier 1/2: explicit codes on the anchor line, then up to MaxCodeLookahead
	// continuation lines.
	codes := ResolveCodes(line, cat)
	if len(codes) == 0 {
		for off := 1; off <= opts.MaxCodeLookahead && anchor+off < end; off++ {
			next := lines[anchor+off]
			if opts.isIgnorableLine(next) {
				continue
			}
			if codes = ResolveCodes(next, cat); len(codes) > 0 {
				break
			}
		}
	}

	// Description-based fallback on the anchor line.
	if len(codes) == 0 {
		if m, ok := resolveFromDescription(line, opts); ok {
			codes = []CodeMatch{m}
		}
	}

	// Schedule times from the anchor line and the whole continuation block,
	// skipping transit/break lines.
	var times []TimeRange
	for i := anchor; i < end; i++ {
		if opts.isIgnorableLine(lines[i]) {
			continue
		}
		times = append(times, extractTimeRanges(lines[i])...)
	}

	if len(codes) == 0 {
		base.ScheduleTimes = times
		return []CandidateEntry{base}
	}

	hasSpecific := false
	for _, c := range codes {
		if c.Tier == TierExplicitSpecific {
			hasSpecific = true
			break
		}
	}

	out := make([]CandidateEntry, 0, len(codes))
	for _, c := range codes {
		entry := base
		entry.ServiceCode = c.Code
		entry.Tier = c.Tier
		if !hasSpecific || c.Tier == TierExplicitSpecific {
			entry.ScheduleTimes = append([]TimeRange(nil), times...)
		}
		out = append(out, entry)
	}
	return out
}

// extractTimeRanges pairs consecutive HH:MM / HHhMM tokens on a line.
// An odd trailing token (a lone departure stamp) is dropped.
func extractTimeRanges(line string) []TimeRange {
	matches := timeTokenRe.FindAllStringSubmatch(line, -1)
	var ranges []TimeRange
	for i := 0; i+1 < len(matches); i += 2 {
		ranges = append(ranges, TimeRange{
			Start: normalizeClock(matches[i]),
			End:   normalizeClock(matches[i+1]),
		})
	}
	return ranges
}

// normalizeClock renders a matched time token as zero-padded "HH:MM".
func normalizeClock(m []string) string {
	hh := m[1]
	if len(hh) == 1 {
		hh = "0" + hh
	}
	return fmt.Sprintf("%s:%s", hh, m[2])
}

// buildRawContext keeps a bounded snippet of the source block for diagnostics.
func buildRawContext(lines []string, anchor, end int, max int) string {
	stop := anchor + 3
	if stop > end {
		stop = end
	}
	snippet := strings.TrimSpace(strings.Join(lines[anchor:stop], " | "))
	if max > 0 && len(snippet) > max {
		snippet = snippet[:max]
	}
	return snippet
}
