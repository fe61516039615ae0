package bulletin

import (
	"regexp"
	"strings"
)

// DescriptionCode maps a free-text description pattern to a generic service
// code. Patterns are tried in order; the first match wins.
type DescriptionCode struct {
	Pattern string
	Code    string
}

// Options carries the tunable parsing data. Night suffixes and the
// ignorable-keyword list are configuration, not logic: new post prefixes and
// layout noise show up in future bulletins without a code change.
type Options struct {
	// NightSuffixes are code endings designating night shifts (default "003").
	NightSuffixes []string
	// IgnoreKeywords mark transit/break lines; such lines are never date
	// anchors, code sources or schedule-time sources.
	IgnoreKeywords []string
	// DescriptionCodes resolve codes from anchor-line wording when no explicit
	// code is present.
	DescriptionCodes []DescriptionCode
	// MinTextLength is the minimum extracted-text size considered usable.
	MinTextLength int
	// MaxCodeLookahead is how many continuation lines are scanned for a code.
	MaxCodeLookahead int
	// MaxRawContext bounds the diagnostic snippet kept per entry.
	MaxRawContext int

	descRes []*regexp.Regexp
}

// DefaultOptions returns the option set observed on current bulletins.
func DefaultOptions() Options {
	return Options{
		NightSuffixes: []string{"003"},
		IgnoreKeywords: []string{
			"COUPURE", "TRAJET", "PAUSE", "DEPLACEMENT", "DÉPLACEMENT",
			"PRISE DE SERVICE", "FIN DE SERVICE",
		},
		DescriptionCodes: []DescriptionCode{
			{Pattern: `(?i)repos\s+p[ée]riodique`, Code: "RP"},
			{Pattern: `(?i)\brepos\b`, Code: "RP"},
			{Pattern: `(?i)cong[ée]`, Code: "CP"},
			{Pattern: `(?i)formation`, Code: "FO"},
			{Pattern: `(?i)visite\s+m[ée]dicale`, Code: "VM"},
			{Pattern: `(?i)maladie`, Code: "MA"},
			{Pattern: `(?i)non\s+utilis`, Code: "NU"},
		},
		MinTextLength:    50,
		MaxCodeLookahead: 3,
		MaxRawContext:    200,
	}
}

// compileDescriptions compiles the description patterns once per run.
// Invalid patterns are skipped rather than failing the parse.
func (o *Options) compileDescriptions() []*regexp.Regexp {
	if o.descRes != nil {
		return o.descRes
	}
	res := make([]*regexp.Regexp, len(o.DescriptionCodes))
	for i, dc := range o.DescriptionCodes {
		re, err := regexp.Compile(dc.Pattern)
		if err != nil {
			continue
		}
		res[i] = re
	}
	o.descRes = res
	return res
}

// isIgnorableLine reports whether a line matches the ignore-keyword list.
func (o *Options) isIgnorableLine(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range o.IgnoreKeywords {
		if kw != "" && strings.Contains(upper, strings.ToUpper(kw)) {
			return true
		}
	}
	return false
}

// hasNightSuffix reports whether a code ends in one of the night suffixes.
func (o *Options) hasNightSuffix(code string) bool {
	for _, suffix := range o.NightSuffixes {
		if suffix != "" && strings.HasSuffix(code, suffix) {
			return true
		}
	}
	return false
}
