package providers

import (
	"log/slog"
	"testing"
)

func TestRegistryReload(t *testing.T) {
	reg := NewRegistry()
	reg.SetLogger(slog.New(slog.DiscardHandler))

	reg.Reload(RegistryConfig{
		OCRProviders: map[string]OCRProviderConfig{
			"primary":  {Type: "mistral-ocr", APIKey: "k", Enabled: true},
			"disabled": {Type: "mistral-ocr", APIKey: "k", Enabled: false},
			"bogus":    {Type: "does-not-exist", Enabled: true},
		},
		LLMProviders: map[string]LLMProviderConfig{
			"structurer": {Type: "openrouter", APIKey: "k", Enabled: true},
		},
	})

	if _, err := reg.GetOCR("primary"); err != nil {
		t.Errorf("GetOCR(primary) error: %v", err)
	}
	if _, err := reg.GetOCR("disabled"); err == nil {
		t.Error("disabled provider was registered")
	}
	if _, err := reg.GetOCR("bogus"); err == nil {
		t.Error("unknown provider type was registered")
	}
	if _, err := reg.GetLLM("structurer"); err != nil {
		t.Errorf("GetLLM(structurer) error: %v", err)
	}

	if got := len(reg.ListOCR()); got != 1 {
		t.Errorf("ListOCR() has %d entries, want 1", got)
	}
	if got := len(reg.ListLLM()); got != 1 {
		t.Errorf("ListLLM() has %d entries, want 1", got)
	}

	// Reload replaces, not merges.
	reg.Reload(RegistryConfig{})
	if got := len(reg.ListOCR()); got != 0 {
		t.Errorf("ListOCR() after empty reload has %d entries, want 0", got)
	}
}
