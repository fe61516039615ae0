package providers

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// OCRProviderConfig configures an OCR provider instance.
type OCRProviderConfig struct {
	Type    string // "mistral-ocr"
	Model   string
	APIKey  string
	Timeout time.Duration
	Enabled bool
}

// LLMProviderConfig configures an LLM client instance.
type LLMProviderConfig struct {
	Type    string // "openrouter"
	Model   string
	APIKey  string
	Timeout time.Duration
	Enabled bool
}

// RegistryConfig is the full provider configuration.
type RegistryConfig struct {
	OCRProviders map[string]OCRProviderConfig
	LLMProviders map[string]LLMProviderConfig
}

// Registry holds references to LLM clients and OCR providers. It supports
// config-driven instantiation, hot-reload, and thread-safe access.
type Registry struct {
	mu           sync.RWMutex
	llmClients   map[string]LLMClient
	ocrProviders map[string]OCRProvider
	logger       *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		llmClients:   make(map[string]LLMClient),
		ocrProviders: make(map[string]OCRProvider),
		logger:       slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Reload replaces all providers from configuration. Unknown types are logged
// and skipped; disabled entries are dropped.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ocrProviders = make(map[string]OCRProvider, len(cfg.OCRProviders))
	for name, pc := range cfg.OCRProviders {
		if !pc.Enabled {
			continue
		}
		switch pc.Type {
		case "mistral-ocr":
			r.ocrProviders[name] = NewMistralOCRClient(MistralOCRConfig{
				APIKey:  pc.APIKey,
				Model:   pc.Model,
				Timeout: pc.Timeout,
			})
			r.logger.Info("registered OCR provider", "name", name, "type", pc.Type)
		default:
			r.logger.Warn("unknown OCR provider type", "name", name, "type", pc.Type)
		}
	}

	r.llmClients = make(map[string]LLMClient, len(cfg.LLMProviders))
	for name, pc := range cfg.LLMProviders {
		if !pc.Enabled {
			continue
		}
		switch pc.Type {
		case "openrouter":
			r.llmClients[name] = NewOpenRouterClient(OpenRouterConfig{
				APIKey:       pc.APIKey,
				DefaultModel: pc.Model,
				Timeout:      pc.Timeout,
			})
			r.logger.Info("registered LLM client", "name", name, "type", pc.Type)
		default:
			r.logger.Warn("unknown LLM provider type", "name", name, "type", pc.Type)
		}
	}
}

// GetOCR returns an OCR provider by name.
func (r *Registry) GetOCR(name string) (OCRProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.ocrProviders[name]
	if !ok {
		return nil, fmt.Errorf("OCR provider not found: %s", name)
	}
	return provider, nil
}

// GetLLM returns an LLM client by name.
func (r *Registry) GetLLM(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.llmClients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// ListOCR returns the names of registered OCR providers.
func (r *Registry) ListOCR() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ocrProviders))
	for name := range r.ocrProviders {
		names = append(names, name)
	}
	return names
}

// ListLLM returns the names of registered LLM clients.
func (r *Registry) ListLLM() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.llmClients))
	for name := range r.llmClients {
		names = append(names, name)
	}
	return names
}
