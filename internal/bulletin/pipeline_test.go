package bulletin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/cogc-planning/bulletin/internal/catalog"
	"github.com/cogc-planning/bulletin/internal/providers"
)

const sampleBulletin = `BULLETIN DE COMMANDE
Agent : DUPONT Jean
N° CP : 1234567A
Commande du 21/04/2025 au 27/04/2025

lundi 21/04/2025 Repos périodique
mardi 22/04/2025 CCU001 05:45 13:15
mercredi 23/04/2025 CCU002 13:15 21:45
jeudi 24/04/2025 CCU003 22:00 06:00
TRAJET 21:00 21:45
vendredi 25/04/2025 NU
`

func newTestPipeline(ocr providers.OCRProvider, llm providers.LLMClient) *Pipeline {
	p := NewPipeline(slog.New(slog.DiscardHandler), ocr, llm, nil, DefaultOptions())
	p.textLayer = func([]byte) (string, int, error) {
		return "", 0, fmt.Errorf("no text layer")
	}
	return p
}

func TestPipelineParse(t *testing.T) {
	t.Run("full bulletin through OCR", func(t *testing.T) {
		p := newTestPipeline(providers.NewMockOCR(sampleBulletin), nil)
		res := p.Parse(context.Background(), []byte("%PDF-1.4"))

		if !res.Success {
			t.Fatalf("Success = false, error: %s", res.Error)
		}
		if res.RunID == "" {
			t.Error("RunID is empty")
		}
		if res.Metadata.AgentName != "DUPONT Jean" {
			t.Errorf("AgentName = %q, want %q", res.Metadata.AgentName, "DUPONT Jean")
		}
		if res.Stats.TextSource != "ocr" {
			t.Errorf("TextSource = %q, want %q", res.Stats.TextSource, "ocr")
		}

		byDate := map[string]FinalEntry{}
		for _, e := range res.Entries {
			byDate[e.Date+"/"+e.ServiceCode] = e
		}

		night, ok := byDate["2025-04-25/CCU003"]
		if !ok {
			t.Fatalf("night service not shifted to 2025-04-25: %v", res.Entries)
		}
		if !night.DateShiftedFromNight {
			t.Error("DateShiftedFromNight = false on shifted night service")
		}
		if night.OriginalDate != "2025-04-24" {
			t.Errorf("OriginalDate = %q, want %q", night.OriginalDate, "2025-04-24")
		}
		if len(night.ScheduleTimes) != 1 || night.ScheduleTimes[0] != (TimeRange{Start: "22:00", End: "06:00"}) {
			t.Errorf("night ScheduleTimes = %v, transit line leaked in", night.ScheduleTimes)
		}

		if _, ok := byDate["2025-04-21/RP"]; !ok {
			t.Errorf("rest day missing: %v", res.Entries)
		}
		if _, ok := byDate["2025-04-22/CCU001"]; !ok {
			t.Errorf("morning service missing: %v", res.Entries)
		}
		if _, ok := byDate["2025-04-25/NU"]; !ok {
			t.Errorf("absence day missing: %v", res.Entries)
		}

		if res.Stats.NightShifted != 1 {
			t.Errorf("NightShifted = %d, want 1", res.Stats.NightShifted)
		}
		if res.Stats.TotalEntries != len(res.Entries) {
			t.Errorf("TotalEntries = %d, want %d", res.Stats.TotalEntries, len(res.Entries))
		}
	})

	t.Run("OCR failure falls back to text layer", func(t *testing.T) {
		ocr := providers.NewMockOCR("")
		ocr.ShouldFail = true
		p := newTestPipeline(ocr, nil)
		p.textLayer = func([]byte) (string, int, error) {
			return sampleBulletin, 1, nil
		}

		res := p.Parse(context.Background(), []byte("%PDF-1.4"))
		if !res.Success {
			t.Fatalf("Success = false, error: %s", res.Error)
		}
		if res.Stats.TextSource != "text-layer" {
			t.Errorf("TextSource = %q, want %q", res.Stats.TextSource, "text-layer")
		}
		if len(res.Entries) == 0 {
			t.Error("no entries from text-layer fallback")
		}
	})

	t.Run("short OCR text falls back to text layer", func(t *testing.T) {
		p := newTestPipeline(providers.NewMockOCR("trop court"), nil)
		p.textLayer = func([]byte) (string, int, error) {
			return sampleBulletin, 1, nil
		}

		res := p.Parse(context.Background(), []byte("%PDF-1.4"))
		if !res.Success {
			t.Fatalf("Success = false, error: %s", res.Error)
		}
		if res.Stats.TextSource != "text-layer" {
			t.Errorf("TextSource = %q, want %q", res.Stats.TextSource, "text-layer")
		}
	})

	t.Run("all strategies failing reports error", func(t *testing.T) {
		ocr := providers.NewMockOCR("")
		ocr.ShouldFail = true
		p := newTestPipeline(ocr, nil)

		res := p.Parse(context.Background(), []byte("not a pdf"))
		if res.Success {
			t.Fatal("Success = true with no usable text source")
		}
		if res.Error == "" {
			t.Error("Error is empty on failure")
		}
		if res.Entries == nil {
			t.Error("Entries is nil, want empty slice")
		}
	})

	t.Run("no providers at all uses text layer", func(t *testing.T) {
		p := newTestPipeline(nil, nil)
		p.textLayer = func([]byte) (string, int, error) {
			return sampleBulletin, 1, nil
		}
		res := p.Parse(context.Background(), []byte("%PDF-1.4"))
		if !res.Success {
			t.Fatalf("Success = false, error: %s", res.Error)
		}
	})

	t.Run("LLM structuring path on zero candidates", func(t *testing.T) {
		// Long enough text with no date anchors at all.
		garbled := strings.Repeat("texte illisible sans aucune date exploitable ", 5)

		llm := providers.NewMockLLM()
		llm.ResponseJSON = json.RawMessage(`{
			"metadata": {"agent_name": "MARTIN Paul"},
			"entries": [
				{"date": "24/04/2025", "code": "CCU003", "times": [{"start": "22:00", "end": "06:00"}]},
				{"date": "25/04/2025", "code": "RP"},
				{"date": "", "code": "CCU001"}
			]
		}`)

		p := newTestPipeline(providers.NewMockOCR(garbled), llm)
		res := p.Parse(context.Background(), []byte("%PDF-1.4"))
		if !res.Success {
			t.Fatalf("Success = false, error: %s", res.Error)
		}
		if res.Stats.TextSource != "llm" {
			t.Errorf("TextSource = %q, want %q", res.Stats.TextSource, "llm")
		}
		if res.Metadata.AgentName != "MARTIN Paul" {
			t.Errorf("AgentName = %q, want %q", res.Metadata.AgentName, "MARTIN Paul")
		}
		// The dateless entry is dropped, the night service shifts.
		if len(res.Entries) != 2 {
			t.Fatalf("got %d entries, want 2: %v", len(res.Entries), res.Entries)
		}
		found := false
		for _, e := range res.Entries {
			if e.ServiceCode == "CCU003" && e.Date == "2025-04-25" && e.DateShiftedFromNight {
				found = true
			}
		}
		if !found {
			t.Errorf("shifted CCU003 on 2025-04-25 missing: %v", res.Entries)
		}
	})

	t.Run("LLM failure leaves regex result", func(t *testing.T) {
		garbled := strings.Repeat("texte illisible sans aucune date exploitable ", 5)
		llm := providers.NewMockLLM()
		llm.ShouldFail = true

		p := newTestPipeline(providers.NewMockOCR(garbled), llm)
		res := p.Parse(context.Background(), []byte("%PDF-1.4"))
		if !res.Success {
			t.Fatalf("Success = false, error: %s", res.Error)
		}
		if len(res.Entries) != 0 {
			t.Errorf("got %d entries from failed structuring, want 0", len(res.Entries))
		}
	})

	t.Run("nil catalog cache uses fallback subset", func(t *testing.T) {
		// CCU001 is in the fallback subset, an exotic code is not.
		text := sampleBulletin + "\nsamedi 26/04/2025 ZQW001 05:45 13:15\n"
		p := newTestPipeline(providers.NewMockOCR(text), nil)
		res := p.Parse(context.Background(), []byte("%PDF-1.4"))
		if !res.Success {
			t.Fatalf("Success = false, error: %s", res.Error)
		}
		for _, e := range res.Entries {
			if e.Date == "2025-04-26" {
				// ZQW001 is not in the fallback catalog: the explicit tiers
				// cannot resolve it, so the morning times classify it instead.
				if e.ServiceCode != "MATIN" {
					t.Errorf("ServiceCode = %q, want time-inferred MATIN", e.ServiceCode)
				}
				if e.Tier != TierTimeInferred {
					t.Errorf("Tier = %v, want %v", e.Tier, TierTimeInferred)
				}
			}
		}
	})
}

func TestPipelineRecoversPanic(t *testing.T) {
	p := newTestPipeline(nil, nil)
	p.textLayer = func([]byte) (string, int, error) {
		panic("boom")
	}
	res := p.Parse(context.Background(), []byte("%PDF-1.4"))
	if res.Success {
		t.Fatal("Success = true after panic")
	}
	if !strings.Contains(res.Error, "internal error") {
		t.Errorf("Error = %q, want internal error marker", res.Error)
	}
}

func TestPipelineUsesCatalogCache(t *testing.T) {
	store := staticStore{codes: []catalog.ServiceCode{
		{Code: "ZQW001", PostCode: "ZQW", Marker: catalog.MarkerMorning, Description: "Poste local matinée"},
	}}
	cache := catalog.NewCache(&store, 0, slog.New(slog.DiscardHandler))

	text := `BULLETIN DE COMMANDE HEBDOMADAIRE DU POSTE LOCAL

samedi 26/04/2025 ZQW001 05:45 13:15
`
	p := NewPipeline(slog.New(slog.DiscardHandler), providers.NewMockOCR(text), nil, cache, DefaultOptions())

	res := p.Parse(context.Background(), []byte("%PDF-1.4"))
	if !res.Success {
		t.Fatalf("Success = false, error: %s", res.Error)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("got %d entries, want 1: %v", len(res.Entries), res.Entries)
	}
	if res.Entries[0].ServiceCode != "ZQW001" {
		t.Errorf("ServiceCode = %q, want %q", res.Entries[0].ServiceCode, "ZQW001")
	}
	if !res.Entries[0].IsValidCode {
		t.Error("IsValidCode = false for store-backed code")
	}
}

type staticStore struct {
	codes []catalog.ServiceCode
}

func (s *staticStore) Load(ctx context.Context) ([]catalog.ServiceCode, error) {
	return s.codes, nil
}
