package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-object",
		Description: "A test object",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"marks": map[string]any{"type": "integer", "minimum": 0},
				"tier":  map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			},
			"required": []any{"name", "marks"},
		},
	}
}

func TestValidateResponse_ValidJSON(t *testing.T) {
	raw := json.RawMessage(`{"name":"Alice","marks":10,"tier":"easy"}`)
	err := validateResponse(testSchema(), raw)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_ValidWithoutOptional(t *testing.T) {
	raw := json.RawMessage(`{"name":"Bob","marks":8}`)
	err := validateResponse(testSchema(), raw)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"name":"Charlie"}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_WrongType(t *testing.T) {
	raw := json.RawMessage(`{"name":"Dave","marks":"ten"}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for wrong type")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_InvalidEnum(t *testing.T) {
	raw := json.RawMessage(`{"name":"Eve","marks":9,"tier":"expert"}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for invalid enum value")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	raw := json.RawMessage(`{not json}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	raw := json.RawMessage(``)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	err := validateResponse(nil, raw)
	if err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_WorksheetSet(t *testing.T) {
	schema := &Schema{
		Name:        "test-worksheet-set",
		Description: "Worksheets keyed by tier",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"worksheets": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"easy": map[string]any{"type": "string", "minLength": 1},
						"hard": map[string]any{"type": "string", "minLength": 1},
					},
					"required":             []any{"easy", "hard"},
					"additionalProperties": false,
				},
			},
			"required": []any{"worksheets"},
		},
	}

	valid := json.RawMessage(`{"worksheets":{"easy":"1. Q","hard":"1. Q"}}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	missing := json.RawMessage(`{"worksheets":{"easy":"1. Q"}}`)
	if err := validateResponse(schema, missing); err == nil {
		t.Fatal("expected error for missing tier")
	}

	empty := json.RawMessage(`{"worksheets":{"easy":"","hard":"1. Q"}}`)
	if err := validateResponse(schema, empty); err == nil {
		t.Fatal("expected error for empty tier text")
	}

	extra := json.RawMessage(`{"worksheets":{"easy":"1. Q","hard":"1. Q","expert":"1. Q"}}`)
	if err := validateResponse(schema, extra); err == nil {
		t.Fatal("expected error for unrequested tier")
	}
}

func TestValidateResponse_ErrorNamesSchema(t *testing.T) {
	err := validateResponse(testSchema(), json.RawMessage(`{"name":"Frank"}`))
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
	if invErr.Schema != "test-object" {
		t.Errorf("schema = %q", invErr.Schema)
	}
	if got := err.Error(); !strings.Contains(got, "test-object") {
		t.Errorf("error %q should name the schema", got)
	}
}
