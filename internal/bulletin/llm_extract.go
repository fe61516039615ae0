package bulletin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cogc-planning/bulletin/internal/catalog"
	"github.com/cogc-planning/bulletin/internal/providers"
)

// structuredSchema is the strict-JSON contract for the chat/structuring
// alternate path. Entries missing a date or code are rejected on receipt.
const structuredSchema = `{
  "type": "object",
  "properties": {
    "metadata": {
      "type": "object",
      "properties": {
        "agent_name": {"type": "string"},
        "personnel_number": {"type": "string"},
        "edition_date": {"type": "string"},
        "period_start": {"type": "string"},
        "period_end": {"type": "string"}
      }
    },
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "date": {"type": "string"},
          "code": {"type": "string"},
          "times": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "start": {"type": "string"},
                "end": {"type": "string"}
              },
              "required": ["start", "end"]
            }
          }
        },
        "required": ["date", "code"]
      }
    }
  },
  "required": ["entries"]
}`

const structuringPrompt = `Tu analyses un bulletin de commande SNCF (planning d'un agent circulation).
Extrais chaque journée avec sa date (JJ/MM/AAAA), son code service (ex: CCU003, NU, RP)
et ses horaires (HH:MM). Réponds UNIQUEMENT avec un JSON conforme au schéma demandé,
sans commentaire ni markdown.

Texte du bulletin:
`

type structuredResult struct {
	Metadata struct {
		AgentName       string `json:"agent_name"`
		PersonnelNumber string `json:"personnel_number"`
		EditionDate     string `json:"edition_date"`
		PeriodStart     string `json:"period_start"`
		PeriodEnd       string `json:"period_end"`
	} `json:"metadata"`
	Entries []struct {
		Date  string `json:"date"`
		Code  string `json:"code"`
		Times []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"times"`
	} `json:"entries"`
}

// ExtractWithLLM is the alternate structuring path: the OCR text is handed to
// the chat collaborator with a strict-JSON response format, the reply is
// validated against the schema, and surviving entries are converted into raw
// candidates that re-enter the normal dedup/rollover stages.
func ExtractWithLLM(ctx context.Context, llm providers.LLMClient, text string) ([]CandidateEntry, Metadata, error) {
	var md Metadata

	result, err := llm.Chat(ctx, &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: "user", Content: structuringPrompt + text},
		},
		ResponseFormat: &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: json.RawMessage(structuredSchema),
		},
	})
	if err != nil {
		return nil, md, fmt.Errorf("structuring call: %w", err)
	}
	if !result.Success || len(result.ParsedJSON) == 0 {
		return nil, md, fmt.Errorf("structuring call returned no JSON: %s", result.ErrorMessage)
	}

	if err := providers.ValidateStructuredJSON(json.RawMessage(structuredSchema), result.ParsedJSON); err != nil {
		return nil, md, err
	}

	var sr structuredResult
	if err := json.Unmarshal(result.ParsedJSON, &sr); err != nil {
		return nil, md, fmt.Errorf("decode structured result: %w", err)
	}

	md = Metadata{
		AgentName:       sr.Metadata.AgentName,
		PersonnelNumber: sr.Metadata.PersonnelNumber,
		EditionDate:     sr.Metadata.EditionDate,
		PeriodStart:     sr.Metadata.PeriodStart,
		PeriodEnd:       sr.Metadata.PeriodEnd,
	}

	var cands []CandidateEntry
	for _, raw := range sr.Entries {
		code := catalog.Normalize(raw.Code)
		iso, display, ok := normalizeEntryDate(raw.Date)
		if !ok || code == "" {
			// Missing or malformed date/code: ignore, do not trust.
			continue
		}

		tier := TierExplicitGeneric
		if specificCodeRe.MatchString(code) {
			tier = TierExplicitSpecific
		}

		entry := CandidateEntry{
			Date:        iso,
			DateDisplay: display,
			DayOfWeek:   FrenchDayName(iso),
			ServiceCode: code,
			Tier:        tier,
			RawContext:  "llm:" + raw.Date + " " + code,
		}
		for _, tr := range raw.Times {
			entry.ScheduleTimes = append(entry.ScheduleTimes, TimeRange{Start: tr.Start, End: tr.End})
		}
		cands = append(cands, entry)
	}

	return cands, md, nil
}

// normalizeEntryDate accepts either display or ISO form from the model.
func normalizeEntryDate(s string) (iso, display string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}
	if i, err := ISOFromDisplay(s); err == nil {
		return i, s, true
	}
	if d, err := DisplayFromISO(s); err == nil {
		return s, d, true
	}
	return "", "", false
}
