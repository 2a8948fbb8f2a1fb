package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"single line fence", "```{\"a\":1}```", `{"a":1}`},
		{"surrounding space", "  ```json\n{\"a\":1}\n```\n", `{"a":1}`},
		{"unterminated", "```json\n{\"a\":1}", "```json\n{\"a\":1}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(stripCodeFence(json.RawMessage(tt.in)))
			if got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFinishResponse(t *testing.T) {
	schema := testSchema()

	t.Run("valid", func(t *testing.T) {
		got, err := finishResponse(schema, json.RawMessage("```json\n{\"name\":\"a\",\"marks\":1}\n```"), "end")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != `{"name":"a","marks":1}` {
			t.Errorf("content = %s", got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := finishResponse(schema, json.RawMessage(`{"name":"a"}`), "end")
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := finishResponse(schema, json.RawMessage(`{"name":"a","ma`), "max_tokens")
		var mt *ErrMaxTokensExceeded
		if !errors.As(err, &mt) {
			t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
		}
		if string(mt.Content) != `{"name":"a","ma` {
			t.Errorf("content = %s", mt.Content)
		}
	})

	t.Run("no schema", func(t *testing.T) {
		got, err := finishResponse(nil, json.RawMessage("free text"), "max_tokens")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != "free text" {
			t.Errorf("content = %s", got)
		}
	})
}
