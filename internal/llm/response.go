package llm

import (
	"bytes"
	"encoding/json"
)

// finishResponse normalizes provider output and validates it against the
// request schema. Output that fails validation after the model stopped on
// its token limit is reported as truncated rather than invalid.
func finishResponse(schema *Schema, content json.RawMessage, stopReason string) (json.RawMessage, error) {
	content = stripCodeFence(content)
	if schema == nil {
		return content, nil
	}
	if err := validateResponse(schema, content); err != nil {
		if stopReason == "max_tokens" {
			return nil, &ErrMaxTokensExceeded{Content: content}
		}
		return nil, err
	}
	return content, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence, which some
// models emit even in JSON mode.
func stripCodeFence(content json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(content)
	if !bytes.HasPrefix(trimmed, []byte("```")) || !bytes.HasSuffix(trimmed, []byte("```")) || len(trimmed) < 6 {
		return content
	}
	inner := trimmed[3 : len(trimmed)-3]
	if nl := bytes.IndexByte(inner, '\n'); nl >= 0 && !bytes.ContainsAny(inner[:nl], "{[\"") {
		inner = inner[nl+1:]
	}
	return json.RawMessage(bytes.TrimSpace(inner))
}
