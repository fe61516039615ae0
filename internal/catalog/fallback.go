package catalog

// Fallback returns the compiled-in catalog subset used when the service_codes
// table is unreachable. It covers the posts and generic codes seen on every
// bulletin; anything outside this subset resolves as UNKNOWN in degraded mode.
func Fallback() *Catalog {
	var codes []ServiceCode

	// Post codes carry a 3-digit shift suffix: 001 matinée, 002 soirée, 003 nuit.
	posts := []struct {
		post string
		desc string
	}{
		{"CRC", "Coordonnateur régional circulation"},
		{"ACR", "Aide coordonnateur régional"},
		{"CCU", "Chargé de circulation unifié"},
		{"CENT", "Centraliste"},
	}
	shifts := []struct {
		suffix string
		marker string
		label  string
	}{
		{"001", MarkerMorning, "matinée"},
		{"002", MarkerEvening, "soirée"},
		{"003", MarkerNight, "nuit"},
	}
	for _, p := range posts {
		for _, s := range shifts {
			codes = append(codes, ServiceCode{
				Code:        p.post + s.suffix,
				PostCode:    p.post,
				Marker:      s.marker,
				Description: p.desc + " " + s.label,
			})
		}
	}

	// Shift placeholders assigned when only schedule times are known.
	codes = append(codes,
		ServiceCode{Code: "MATIN", Marker: MarkerMorning, Description: "Service de matinée (horaire seul)"},
		ServiceCode{Code: "SOIREE", Marker: MarkerEvening, Description: "Service de soirée (horaire seul)"},
		ServiceCode{Code: "NUIT", Marker: MarkerNight, Description: "Service de nuit (horaire seul)"},
	)

	// Generic absence / leave / rest codes.
	codes = append(codes,
		ServiceCode{Code: "RP", Marker: MarkerRest, Description: "Repos périodique"},
		ServiceCode{Code: "RU", Marker: MarkerRest, Description: "Repos supplémentaire"},
		ServiceCode{Code: "CP", Marker: MarkerLeave, Description: "Congé payé"},
		ServiceCode{Code: "CA", Marker: MarkerLeave, Description: "Congé annuel"},
		ServiceCode{Code: "NU", Marker: MarkerAbsence, Description: "Non utilisé"},
		ServiceCode{Code: "MA", Marker: MarkerAbsence, Description: "Maladie"},
		ServiceCode{Code: "AB", Marker: MarkerAbsence, Description: "Absence"},
		ServiceCode{Code: "FO", Marker: MarkerTraining, Description: "Formation"},
		ServiceCode{Code: "VM", Marker: MarkerMedical, Description: "Visite médicale"},
	)

	return New(codes)
}
