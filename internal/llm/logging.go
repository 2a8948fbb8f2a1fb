package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/worksheetgen/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging. provider names the
// backend ("anthropic", "openai", ...) in the recorded events.
func WithLogging(p Provider, provider string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		if content := failedContent(err); content != nil {
			data.ResponseBody = string(content)
		}
	}

	slog.Debug("llm request",
		"provider", data.Provider,
		"model", data.Model,
		"purpose", purpose,
		"latency_ms", latencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
		"success", data.Success,
	)

	// Record the event but don't fail the request if logging fails.
	// The request context may already be done; the write uses its own.
	logCtx := context.WithoutCancel(ctx)
	if logErr := l.eventRepo.AppendLLMRequest(logCtx, data); logErr != nil {
		slog.Warn("failed to log LLM request event", "error", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// failedContent returns the raw output carried by a validation failure.
func failedContent(err error) json.RawMessage {
	switch e := err.(type) {
	case *ErrInvalidResponse:
		return e.Content
	case *ErrMaxTokensExceeded:
		return e.Content
	}
	return nil
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}
