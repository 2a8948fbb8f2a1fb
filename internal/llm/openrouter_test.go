package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "google/gemini-2.0-flash-exp",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "google/gemini-2.0-flash-exp" {
			t.Errorf("model = %q, want %q", p.ModelID(), "google/gemini-2.0-flash-exp")
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"}); err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("model ids pass through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})
}

func TestOpenRouterProvider_SendsAttribution(t *testing.T) {
	tests := []struct {
		name        string
		cfg         OpenRouterConfig
		wantTitle   string
		wantReferer string
	}{
		{"defaults", OpenRouterConfig{}, "worksheetgen", ""},
		{"configured", OpenRouterConfig{AppTitle: "Class 5 worksheets", Referer: "https://school.example"},
			"Class 5 worksheets", "https://school.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got http.Header
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{
					"id":    "gen-1",
					"model": "google/gemini-2.0-flash-exp",
					"choices": []map[string]any{{
						"index": 0,
						"message": map[string]any{
							"role":    "assistant",
							"content": `{"worksheets":{"easy":"1. Roots absorb water.\nAnswer Key:\n1. True"}}`,
						},
						"finish_reason": "stop",
					}},
					"usage": map[string]any{"prompt_tokens": 30, "completion_tokens": 20, "total_tokens": 50},
				})
			}))
			defer server.Close()

			cfg := tt.cfg
			cfg.APIKey = "sk-or-test"
			cfg.Model = "google/gemini-2.0-flash-exp"
			cfg.BaseURL = server.URL + "/v1"
			p, err := NewOpenRouterProvider(cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			resp, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "Topic: Plants\nTiers: easy\n"}},
				MaxTokens: 512,
			})
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if resp.Usage.OutputTokens != 20 {
				t.Errorf("output tokens = %d", resp.Usage.OutputTokens)
			}
			if got.Get("X-Title") != tt.wantTitle {
				t.Errorf("X-Title = %q, want %q", got.Get("X-Title"), tt.wantTitle)
			}
			if got.Get("HTTP-Referer") != tt.wantReferer {
				t.Errorf("HTTP-Referer = %q, want %q", got.Get("HTTP-Referer"), tt.wantReferer)
			}
			if got.Get("Authorization") != "Bearer sk-or-test" {
				t.Errorf("Authorization = %q", got.Get("Authorization"))
			}
		})
	}
}
