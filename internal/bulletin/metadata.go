package bulletin

import "regexp"

// Per-field pattern lists, strictest first. The first match wins; later
// entries are looser fallbacks for degraded OCR output. A field with no match
// stays empty.
var (
	agentNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)agent\s*:\s*([A-ZÀ-Ý][A-Za-zÀ-ÿ'’ -]{2,60})`),
		regexp.MustCompile(`(?i)nom(?:\s+de\s+l'agent)?\s*:\s*([A-ZÀ-Ý][A-Za-zÀ-ÿ'’ -]{2,60})`),
		regexp.MustCompile(`(?m)^M(?:\.|me|lle)?\s+([A-ZÀ-Ý][A-ZÀ-Ý'’ -]{2,40})\s*$`),
	}

	personnelNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)n[°o]\s*cp\s*:?\s*([0-9]{7}[A-Z]?)`),
		regexp.MustCompile(`(?i)matricule\s*:?\s*([0-9A-Z]{6,8})`),
		regexp.MustCompile(`\b([0-9]{7}[A-Z])\b`),
	}

	editionDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[ée]dit[ée]\s+le\s*:?\s*(\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)[ée]dition\s+du\s*:?\s*(\d{2}/\d{2}/\d{4})`),
	}

	periodPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:commande|p[ée]riode)\s+du\s*(\d{2}/\d{2}/\d{4})\s*au\s*(\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`(?i)du\s*(\d{2}/\d{2}/\d{4})\s*au\s*(\d{2}/\d{2}/\d{4})`),
	}
)

// ExtractMetadata pulls the agent header fields out of the bulletin text.
// Pure pattern matching, no side effects; absent fields are not errors.
func ExtractMetadata(text string) Metadata {
	var md Metadata

	md.AgentName = firstSubmatch(agentNamePatterns, text)
	md.PersonnelNumber = firstSubmatch(personnelNumberPatterns, text)
	md.EditionDate = firstSubmatch(editionDatePatterns, text)

	for _, re := range periodPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			md.PeriodStart = m[1]
			md.PeriodEnd = m[2]
			break
		}
	}

	return md
}

func firstSubmatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return trimSpaces(m[1])
		}
	}
	return ""
}

func trimSpaces(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
