// Package catalog provides the service-code catalog: the read-only lookup that
// maps a roster code (e.g. "CCU003") to its post, shift marker and description.
package catalog

import (
	"sort"
	"strings"
)

// Service markers. Each catalog code carries exactly one marker.
const (
	MarkerMorning  = "-"  // matinée
	MarkerEvening  = "O"  // soirée
	MarkerNight    = "X"  // nuit
	MarkerRest     = "RP" // repos périodique
	MarkerLeave    = "CP" // congé
	MarkerAbsence  = "A"  // absence / non utilisé
	MarkerTraining = "F"  // formation
	MarkerMedical  = "VM" // visite médicale
)

// ServiceCode is one row of the catalog.
type ServiceCode struct {
	Code        string `json:"code"`
	PostCode    string `json:"post_code,omitempty"` // empty for generic codes
	Marker      string `json:"marker"`
	Description string `json:"description"`
}

// Catalog is an immutable code lookup. All lookups are case-insensitive and
// trimmed. Build one with New; never mutate it after that — parse runs hold
// onto snapshots concurrently.
type Catalog struct {
	codes map[string]ServiceCode
}

// New builds a catalog from a list of service codes. Codes are normalized
// (trimmed, uppercased); later duplicates win.
func New(codes []ServiceCode) *Catalog {
	m := make(map[string]ServiceCode, len(codes))
	for _, sc := range codes {
		key := Normalize(sc.Code)
		if key == "" {
			continue
		}
		sc.Code = key
		m[key] = sc
	}
	return &Catalog{codes: m}
}

// Normalize returns the canonical form of a code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Lookup returns the catalog entry for a code.
func (c *Catalog) Lookup(code string) (ServiceCode, bool) {
	sc, ok := c.codes[Normalize(code)]
	return sc, ok
}

// Has reports whether a code exists in the catalog.
func (c *Catalog) Has(code string) bool {
	_, ok := c.codes[Normalize(code)]
	return ok
}

// IsNightCode reports whether a code carries the night marker.
func (c *Catalog) IsNightCode(code string) bool {
	sc, ok := c.Lookup(code)
	return ok && sc.Marker == MarkerNight
}

// NightCodes returns all codes carrying the night marker, sorted.
func (c *Catalog) NightCodes() []string {
	var out []string
	for code, sc := range c.codes {
		if sc.Marker == MarkerNight {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

// Codes returns all entries sorted by code.
func (c *Catalog) Codes() []ServiceCode {
	out := make([]ServiceCode, 0, len(c.codes))
	for _, sc := range c.codes {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of codes in the catalog.
func (c *Catalog) Len() int {
	return len(c.codes)
}
