package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const (
	MockOCRName = "mock-ocr"
	MockLLMName = "mock-llm"
)

// MockOCR is an OCRProvider for testing.
type MockOCR struct {
	// Configurable behavior
	Text       string
	PageCount  int
	ShouldFail bool

	requestCount atomic.Int64
}

// NewMockOCR creates a mock OCR provider returning the given text.
func NewMockOCR(text string) *MockOCR {
	return &MockOCR{Text: text, PageCount: 1}
}

// Name returns the provider identifier.
func (m *MockOCR) Name() string { return MockOCRName }

// ProcessDocument returns the canned text.
func (m *MockOCR) ProcessDocument(ctx context.Context, pdf []byte) (*OCRResult, error) {
	m.requestCount.Add(1)
	if m.ShouldFail {
		return &OCRResult{
			Success:      false,
			ErrorMessage: "mock OCR failure",
		}, fmt.Errorf("mock OCR failure")
	}

	pages := make([]PageText, m.PageCount)
	for i := range pages {
		pages[i] = PageText{Index: i, Markdown: m.Text}
	}
	return &OCRResult{
		Success:       true,
		Pages:         pages,
		Text:          m.Text,
		Model:         "mock",
		ExecutionTime: time.Millisecond,
	}, nil
}

// RequestCount returns how many documents were processed.
func (m *MockOCR) RequestCount() int64 { return m.requestCount.Load() }

// MockLLM is an LLMClient for testing.
type MockLLM struct {
	ResponseText string
	ResponseJSON json.RawMessage
	ShouldFail   bool

	requestCount atomic.Int64
}

// NewMockLLM creates a mock LLM client.
func NewMockLLM() *MockLLM {
	return &MockLLM{ResponseText: "mock response"}
}

// Name returns the client identifier.
func (m *MockLLM) Name() string { return MockLLMName }

// Chat returns the canned response.
func (m *MockLLM) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	count := m.requestCount.Add(1)

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockLLMName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if m.ShouldFail {
		result.Success = false
		result.ErrorType = "mock_error"
		result.ErrorMessage = "mock LLM failure"
		return result, fmt.Errorf("mock LLM failure")
	}

	result.Success = true
	result.Content = m.ResponseText
	if req.ResponseFormat != nil && m.ResponseJSON != nil {
		result.Content = string(m.ResponseJSON)
		result.ParsedJSON = m.ResponseJSON
	}
	return result, nil
}

// RequestCount returns how many chat requests were made.
func (m *MockLLM) RequestCount() int64 { return m.requestCount.Load() }

// Verify interfaces
var (
	_ OCRProvider = (*MockOCR)(nil)
	_ LLMClient   = (*MockLLM)(nil)
)
