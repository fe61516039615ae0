package bulletin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cogc-planning/bulletin/internal/catalog"
	"github.com/cogc-planning/bulletin/internal/pdftext"
	"github.com/cogc-planning/bulletin/internal/providers"
)

// Pipeline is the top-level entry point: PDF bytes in, structured Result out.
// One Parse call is synchronous end-to-end and holds no state shared with
// concurrent calls; the catalog cache hands each run an immutable snapshot.
type Pipeline struct {
	Logger  *slog.Logger
	OCR     providers.OCRProvider // primary text source, may be nil
	LLM     providers.LLMClient   // optional structuring path, may be nil
	Catalog *catalog.Cache        // may be nil, then the fallback subset is used
	Opts    Options

	// textLayer is the degraded extraction path, overridable in tests.
	textLayer func([]byte) (string, int, error)
}

// NewPipeline wires a pipeline with defaults filled in.
func NewPipeline(logger *slog.Logger, ocr providers.OCRProvider, llm providers.LLMClient, cache *catalog.Cache, opts Options) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinTextLength == 0 {
		opts = DefaultOptions()
	}
	return &Pipeline{
		Logger:    logger,
		OCR:       ocr,
		LLM:       llm,
		Catalog:   cache,
		Opts:      opts,
		textLayer: pdftext.ExtractText,
	}
}

// extraction is the outcome of one text-acquisition strategy.
type extraction struct {
	text   string
	pages  int
	source string
}

// Parse runs the full pipeline on a PDF document. It never panics or errors
// past this boundary: infrastructure failures come back as Success=false.
func (p *Pipeline) Parse(ctx context.Context, pdf []byte) (result *Result) {
	start := time.Now()
	runID := uuid.New().String()

	result = &Result{RunID: runID, Entries: []FinalEntry{}}
	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("parse panicked", "run_id", runID, "panic", r)
			result = &Result{
				RunID:   runID,
				Entries: []FinalEntry{},
				Error:   fmt.Sprintf("internal error: %v", r),
				Stats:   Stats{Duration: time.Since(start)},
			}
		}
	}()

	ext, err := p.extractText(ctx, pdf)
	if err != nil {
		p.Logger.Error("all extraction strategies failed", "run_id", runID, "error", err)
		result.Error = err.Error()
		result.Stats.Duration = time.Since(start)
		return result
	}
	p.Logger.Info("text extracted", "run_id", runID, "source", ext.source,
		"pages", ext.pages, "chars", len(ext.text))

	cat := p.snapshot(ctx)

	result.Metadata = ExtractMetadata(ext.text)
	cands := ExtractEntries(ext.text, cat, p.Opts)

	// Structuring fallback: only when the line scanner came up empty and a
	// chat collaborator is configured.
	if len(cands) == 0 && p.LLM != nil {
		llmCands, llmMeta, lerr := ExtractWithLLM(ctx, p.LLM, ext.text)
		if lerr != nil {
			p.Logger.Warn("structuring path failed", "run_id", runID, "error", lerr)
		} else {
			p.Logger.Info("structuring path used", "run_id", runID, "entries", len(llmCands))
			cands = llmCands
			result.Metadata = mergeMetadata(result.Metadata, llmMeta)
			ext.source = "llm"
		}
	}

	resolved := Deduplicate(cands, cat, p.Opts)
	entries, shifted := RolloverNightShifts(resolved, cat, p.Opts)

	result.Success = true
	result.Entries = entries
	result.Stats = buildStats(entries, shifted, ext, time.Since(start))

	p.Logger.Info("bulletin parsed", "run_id", runID,
		"entries", result.Stats.TotalEntries,
		"valid", result.Stats.ValidEntries,
		"unknown", result.Stats.UnknownEntries,
		"night_shifted", result.Stats.NightShifted,
		"duration", result.Stats.Duration)
	return result
}

// extractText tries the ordered acquisition strategies until one yields
// enough text. OCR failures and thin text layers are recoverable; only when
// every strategy fails does the parse fail.
func (p *Pipeline) extractText(ctx context.Context, pdf []byte) (extraction, error) {
	var lastErr error

	if p.OCR != nil {
		ocrRes, err := p.OCR.ProcessDocument(ctx, pdf)
		if err != nil {
			lastErr = fmt.Errorf("ocr: %w", err)
			p.Logger.Warn("OCR failed, trying text-layer fallback", "error", err)
		} else if len(ocrRes.Text) < p.Opts.MinTextLength {
			lastErr = fmt.Errorf("ocr returned insufficient text (%d chars)", len(ocrRes.Text))
			p.Logger.Warn("OCR text too short, trying text-layer fallback", "chars", len(ocrRes.Text))
		} else {
			return extraction{text: ocrRes.Text, pages: len(ocrRes.Pages), source: "ocr"}, nil
		}
	}

	text, pages, err := p.textLayer(pdf)
	if err != nil {
		if lastErr != nil {
			return extraction{}, fmt.Errorf("text extraction failed: %v; %w", lastErr, err)
		}
		return extraction{}, fmt.Errorf("text extraction failed: %w", err)
	}
	if len(text) < p.Opts.MinTextLength {
		return extraction{}, fmt.Errorf("document has no usable text (%d chars from text layer)", len(text))
	}
	return extraction{text: text, pages: pages, source: "text-layer"}, nil
}

// snapshot returns the catalog snapshot for this run.
func (p *Pipeline) snapshot(ctx context.Context) *catalog.Catalog {
	if p.Catalog == nil {
		return catalog.Fallback()
	}
	return p.Catalog.Get(ctx)
}

// mergeMetadata fills empty regex-extracted fields from the structuring path.
func mergeMetadata(base, extra Metadata) Metadata {
	if base.AgentName == "" {
		base.AgentName = extra.AgentName
	}
	if base.PersonnelNumber == "" {
		base.PersonnelNumber = extra.PersonnelNumber
	}
	if base.EditionDate == "" {
		base.EditionDate = extra.EditionDate
	}
	if base.PeriodStart == "" {
		base.PeriodStart = extra.PeriodStart
	}
	if base.PeriodEnd == "" {
		base.PeriodEnd = extra.PeriodEnd
	}
	return base
}

func buildStats(entries []FinalEntry, shifted int, ext extraction, dur time.Duration) Stats {
	stats := Stats{
		TotalEntries: len(entries),
		NightShifted: shifted,
		Pages:        ext.pages,
		TextSource:   ext.source,
		Duration:     dur,
	}
	for _, e := range entries {
		if e.IsValidCode {
			stats.ValidEntries++
		}
		if e.ServiceCode == UnknownCode {
			stats.UnknownEntries++
		}
	}
	return stats
}
