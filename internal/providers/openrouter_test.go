package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":    "gen-1",
		"model": "test-model",
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(b)
}

func TestOpenRouterChat(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("path = %q, want /chat/completions", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("Authorization = %q", got)
			}
			fmt.Fprint(w, chatResponse("bonjour"))
		}))
		defer srv.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: srv.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "salut"}},
		})
		if err != nil {
			t.Fatalf("Chat error: %v", err)
		}
		if !result.Success {
			t.Fatalf("Success = false: %s", result.ErrorMessage)
		}
		if result.Content != "bonjour" {
			t.Errorf("Content = %q, want %q", result.Content, "bonjour")
		}
		if result.TotalTokens != 15 {
			t.Errorf("TotalTokens = %d, want 15", result.TotalTokens)
		}
	})

	t.Run("retries on 500 then succeeds", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, chatResponse("enfin"))
		}))
		defer srv.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			BaseURL:    srv.URL,
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
		})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "salut"}},
		})
		if err != nil {
			t.Fatalf("Chat error after retries: %v", err)
		}
		if result.Content != "enfin" {
			t.Errorf("Content = %q, want %q", result.Content, "enfin")
		}
		if calls.Load() != 3 {
			t.Errorf("server calls = %d, want 3", calls.Load())
		}
	})

	t.Run("exhausts retries", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			BaseURL:    srv.URL,
			MaxRetries: 2,
			RetryDelay: time.Millisecond,
		})
		_, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "salut"}},
		})
		if err == nil {
			t.Fatal("expected error after exhausted retries")
		}
		if !strings.Contains(err.Error(), "max retries") {
			t.Errorf("error = %v, want max retries marker", err)
		}
	})

	t.Run("non retryable status fails immediately", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "bad request"}}`))
		}))
		defer srv.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			BaseURL:    srv.URL,
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
		})
		_, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "salut"}},
		})
		if err == nil {
			t.Fatal("expected error on 400")
		}
		if calls.Load() != 1 {
			t.Errorf("server calls = %d, want 1 (no retry on 400)", calls.Load())
		}
	})

	t.Run("in body retryable error code", func(t *testing.T) {
		var calls atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				fmt.Fprint(w, `{"error": {"code": "overloaded", "message": "try later"}}`)
				return
			}
			fmt.Fprint(w, chatResponse("ok"))
		}))
		defer srv.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			BaseURL:    srv.URL,
			MaxRetries: 3,
			RetryDelay: time.Millisecond,
		})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "salut"}},
		})
		if err != nil {
			t.Fatalf("Chat error: %v", err)
		}
		if result.Content != "ok" {
			t.Errorf("Content = %q, want %q", result.Content, "ok")
		}
	})

	t.Run("structured output parsed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req openRouterRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
				t.Errorf("ResponseFormat not forwarded: %+v", req.ResponseFormat)
			}
			fmt.Fprint(w, chatResponse("```json\n{\"entries\": []}\n```"))
		}))
		defer srv.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: srv.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "structure"}},
			ResponseFormat: &ResponseFormat{
				Type:       "json_schema",
				JSONSchema: json.RawMessage(`{"type": "object"}`),
			},
		})
		if err != nil {
			t.Fatalf("Chat error: %v", err)
		}
		if string(result.ParsedJSON) != `{"entries":[]}` {
			t.Errorf("ParsedJSON = %s, want normalized object", result.ParsedJSON)
		}
	})

	t.Run("default model applied", func(t *testing.T) {
		var gotModel string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req openRouterRequest
			json.NewDecoder(r.Body).Decode(&req)
			gotModel = req.Model
			fmt.Fprint(w, chatResponse("ok"))
		}))
		defer srv.Close()

		client := NewOpenRouterClient(OpenRouterConfig{BaseURL: srv.URL, DefaultModel: "mistralai/mistral-small"})
		if _, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "salut"}},
		}); err != nil {
			t.Fatalf("Chat error: %v", err)
		}
		if gotModel != "mistralai/mistral-small" {
			t.Errorf("model = %q, want configured default", gotModel)
		}
	})
}
