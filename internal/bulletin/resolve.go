package bulletin

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogc-planning/bulletin/internal/catalog"
)

// Candidate code tokens: either a post prefix with a 3-digit shift suffix
// ("CCU003", "CENT002") or a bare generic code ("NU", "RP"). Tokens only
// count as resolved when the catalog knows them.
var (
	specificCodeRe = regexp.MustCompile(`\b([A-ZÀ-Ý]{2,5}\d{3})\b`)
	genericCodeRe  = regexp.MustCompile(`\b([A-ZÀ-Ý]{2,6})\b`)
	timeTokenRe    = regexp.MustCompile(`\b(\d{1,2})[h:](\d{2})\b`)
)

// CodeMatch is one explicit code found on a line.
type CodeMatch struct {
	Code string
	Tier ResolutionTier
}

// ResolveCodes finds every distinct catalog code on a single line. Suffixed
// post codes resolve at the explicit-specific tier, bare generic codes at
// explicit-generic. A line can legitimately carry more than one: an absence
// code next to the night service replacing it.
func ResolveCodes(line string, cat *catalog.Catalog) []CodeMatch {
	upper := strings.ToUpper(line)
	seen := make(map[string]bool)
	var matches []CodeMatch

	for _, m := range specificCodeRe.FindAllStringSubmatch(upper, -1) {
		code := catalog.Normalize(m[1])
		if cat.Has(code) && !seen[code] {
			seen[code] = true
			matches = append(matches, CodeMatch{Code: code, Tier: TierExplicitSpecific})
		}
	}

	for _, m := range genericCodeRe.FindAllStringSubmatch(upper, -1) {
		code := catalog.Normalize(m[1])
		if cat.Has(code) && !seen[code] {
			seen[code] = true
			matches = append(matches, CodeMatch{Code: code, Tier: TierExplicitGeneric})
		}
	}

	return matches
}

// resolveFromDescription matches the ordered description→code table against
// the anchor line. Resolution tier is explicit-generic.
func resolveFromDescription(line string, opts *Options) (CodeMatch, bool) {
	res := opts.compileDescriptions()
	for i, re := range res {
		if re == nil {
			continue
		}
		if re.MatchString(line) {
			return CodeMatch{Code: opts.DescriptionCodes[i].Code, Tier: TierExplicitGeneric}, true
		}
	}
	return CodeMatch{}, false
}

// InferShiftCode classifies a schedule by the start hour of its first time
// pair. Applied only when no explicit code was found. Returns the shift
// placeholder code ("MATIN"/"SOIREE"/"NUIT") and whether classification
// succeeded.
func InferShiftCode(times []TimeRange) (string, bool) {
	if len(times) == 0 {
		return "", false
	}
	start, ok := parseHour(times[0].Start)
	if !ok {
		return "", false
	}
	end, endOK := parseHour(times[0].End)

	switch {
	case start >= 20, start >= 18 && endOK && end <= 8:
		return "NUIT", true
	case start >= 12 && start < 20:
		return "SOIREE", true
	case start >= 4 && start < 12:
		return "MATIN", true
	default:
		return "", false
	}
}

// parseHour extracts the hour component of "HH:MM".
func parseHour(hhmm string) (int, bool) {
	idx := strings.IndexByte(hhmm, ':')
	if idx <= 0 {
		return 0, false
	}
	h, err := strconv.Atoi(hhmm[:idx])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

// crossesMidnight reports whether a time pair starts late and ends early
// morning (start >= 20, end <= 10).
func crossesMidnight(tr TimeRange) bool {
	start, ok1 := parseHour(tr.Start)
	end, ok2 := parseHour(tr.End)
	return ok1 && ok2 && start >= 20 && end <= 10
}
