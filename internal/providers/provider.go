// Package providers holds the external AI collaborators: document OCR and
// chat/structuring clients, plus a config-driven registry and test mocks.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// OCRProvider converts a PDF document into per-page markdown text.
// Failure is recoverable: the pipeline falls back to local text extraction.
type OCRProvider interface {
	// Name returns the provider identifier (e.g. "mistral-ocr").
	Name() string

	// ProcessDocument runs OCR over a whole PDF document.
	ProcessDocument(ctx context.Context, pdf []byte) (*OCRResult, error)
}

// LLMClient is the chat/structuring collaborator.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g. "openrouter").
	Name() string
}

// PageText is one OCR'd page.
type PageText struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
}

// OCRResult is the response from an OCR provider.
type OCRResult struct {
	Success bool       `json:"success"`
	Pages   []PageText `json:"pages,omitempty"`
	Text    string     `json:"text"` // all pages joined

	Model         string        `json:"model_used,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ResponseFormat specifies structured output format.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Structured output
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // set if ResponseFormat was requested

	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
