package config

import (
	"time"

	"github.com/cogc-planning/bulletin/internal/bulletin"
	"github.com/cogc-planning/bulletin/internal/catalog"
	"github.com/cogc-planning/bulletin/internal/providers"
)

// Config holds bulletin service configuration.
// Stored at: config.yaml (working directory or ~/.bulletin)
type Config struct {
	OCRProviders map[string]OCRProviderCfg `mapstructure:"ocr_providers" yaml:"ocr_providers"`
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Parser       ParserCfg                 `mapstructure:"parser" yaml:"parser"`
	Catalog      CatalogCfg                `mapstructure:"catalog" yaml:"catalog"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// OCRProviderCfg configures an OCR provider.
type OCRProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`       // "mistral-ocr"
	Model          string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`       // "openrouter"
	Model          string `mapstructure:"model" yaml:"model"`     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // API key (supports ${ENV_VAR} syntax)
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selections.
type DefaultsCfg struct {
	OCRProvider string `mapstructure:"ocr_provider" yaml:"ocr_provider"` // Primary OCR provider name
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Structuring LLM provider name
}

// ParserCfg carries the tunable parsing data: conventions that change with
// the bulletin layout, not with the code.
type ParserCfg struct {
	NightSuffixes    []string             `mapstructure:"night_suffixes" yaml:"night_suffixes"`
	IgnoreKeywords   []string             `mapstructure:"ignore_keywords" yaml:"ignore_keywords"`
	DescriptionCodes []DescriptionCodeCfg `mapstructure:"description_codes" yaml:"description_codes"`
	MinTextLength    int                  `mapstructure:"min_text_length" yaml:"min_text_length"`
	MaxCodeLookahead int                  `mapstructure:"max_code_lookahead" yaml:"max_code_lookahead"`
}

// DescriptionCodeCfg maps a description pattern to a generic service code.
type DescriptionCodeCfg struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Code    string `mapstructure:"code" yaml:"code"`
}

// CatalogCfg configures the service-code catalog store.
type CatalogCfg struct {
	// DSN is the Postgres connection string for the service_codes table.
	// Empty means the compiled-in fallback subset only.
	DSN        string `mapstructure:"dsn" yaml:"dsn"`
	TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
}

// ServerCfg configures the HTTP API server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	opts := bulletin.DefaultOptions()

	descCodes := make([]DescriptionCodeCfg, 0, len(opts.DescriptionCodes))
	for _, dc := range opts.DescriptionCodes {
		descCodes = append(descCodes, DescriptionCodeCfg{Pattern: dc.Pattern, Code: dc.Code})
	}

	return &Config{
		OCRProviders: map[string]OCRProviderCfg{
			"mistral": {
				Type:           "mistral-ocr",
				APIKey:         "${MISTRAL_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:           "openrouter",
				Model:          "mistralai/mistral-small-3.1-24b-instruct",
				APIKey:         "${OPENROUTER_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			OCRProvider: "mistral",
			LLMProvider: "openrouter",
		},
		Parser: ParserCfg{
			NightSuffixes:    opts.NightSuffixes,
			IgnoreKeywords:   opts.IgnoreKeywords,
			DescriptionCodes: descCodes,
			MinTextLength:    opts.MinTextLength,
			MaxCodeLookahead: opts.MaxCodeLookahead,
		},
		Catalog: CatalogCfg{
			DSN:        "${BULLETIN_CATALOG_DSN}",
			TTLSeconds: int(catalog.DefaultTTL / time.Second),
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
}

// GetOCRProvider returns an OCR provider config by name.
func (c *Config) GetOCRProvider(name string) (OCRProviderCfg, bool) {
	cfg, ok := c.OCRProviders[name]
	return cfg, ok
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// ToOptions converts the parser section into pipeline options. Zero or empty
// fields fall back to the defaults so a partial config file stays usable.
func (c *Config) ToOptions() bulletin.Options {
	opts := bulletin.DefaultOptions()

	if len(c.Parser.NightSuffixes) > 0 {
		opts.NightSuffixes = c.Parser.NightSuffixes
	}
	if len(c.Parser.IgnoreKeywords) > 0 {
		opts.IgnoreKeywords = c.Parser.IgnoreKeywords
	}
	if len(c.Parser.DescriptionCodes) > 0 {
		descCodes := make([]bulletin.DescriptionCode, 0, len(c.Parser.DescriptionCodes))
		for _, dc := range c.Parser.DescriptionCodes {
			descCodes = append(descCodes, bulletin.DescriptionCode{Pattern: dc.Pattern, Code: dc.Code})
		}
		opts.DescriptionCodes = descCodes
	}
	if c.Parser.MinTextLength > 0 {
		opts.MinTextLength = c.Parser.MinTextLength
	}
	if c.Parser.MaxCodeLookahead > 0 {
		opts.MaxCodeLookahead = c.Parser.MaxCodeLookahead
	}

	return opts
}

// CatalogTTL returns the configured snapshot TTL.
func (c *Config) CatalogTTL() time.Duration {
	if c.Catalog.TTLSeconds <= 0 {
		return catalog.DefaultTTL
	}
	return time.Duration(c.Catalog.TTLSeconds) * time.Second
}

// ToProviderRegistryConfig converts the config to a format suitable for
// providers.Registry. It resolves all ${ENV_VAR} references in API keys.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		OCRProviders: make(map[string]providers.OCRProviderConfig),
		LLMProviders: make(map[string]providers.LLMProviderConfig),
	}

	for name, ocr := range c.OCRProviders {
		cfg.OCRProviders[name] = providers.OCRProviderConfig{
			Type:    ocr.Type,
			Model:   ocr.Model,
			APIKey:  ResolveEnvVars(ocr.APIKey),
			Timeout: time.Duration(ocr.TimeoutSeconds) * time.Second,
			Enabled: ocr.Enabled,
		}
	}

	for name, llm := range c.LLMProviders {
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:    llm.Type,
			Model:   llm.Model,
			APIKey:  ResolveEnvVars(llm.APIKey),
			Timeout: time.Duration(llm.TimeoutSeconds) * time.Second,
			Enabled: llm.Enabled,
		}
	}

	return cfg
}
