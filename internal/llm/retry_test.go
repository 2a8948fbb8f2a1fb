package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// easySet is a minimal worksheet set response.
var easySet = json.RawMessage(`{"worksheets":{"easy":"1. Leaves are green.\nAnswer Key:\n1. True"}}`)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func worksheetRequest() Request {
	return Request{
		System:   "You prepare printable school worksheets.",
		Messages: []Message{{Role: RoleUser, Content: "Topic: Plants\nTiers: easy\n"}},
		Schema:   &Schema{Name: "worksheet-set-easy"},
	}
}

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("503 from upstream")}}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: easySet})
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), worksheetRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != string(easySet) {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(unavailable(), MockResponse{Content: easySet})
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), worksheetRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
	// Every attempt sends the same request.
	if mock.Calls[0].Messages[0].Content != mock.Calls[1].Messages[0].Content {
		t.Error("retried request differs from the original")
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), unavailable(), MockResponse{Content: easySet})
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), worksheetRequest())
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_TruncatedSetNotRetried(t *testing.T) {
	truncated := json.RawMessage(`{"worksheets":{"easy":"1. Leaves are`)
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{Content: truncated}})
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), worksheetRequest())
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.CallCount())
	}
}

func TestRetry_InvalidSetRetriedOnce(t *testing.T) {
	missingTier := func() MockResponse {
		return MockResponse{Err: &ErrInvalidResponse{
			Schema:  "worksheet-set-easy",
			Content: json.RawMessage(`{"worksheets":{}}`),
			Err:     errors.New("missing property 'easy'"),
		}}
	}
	mock := NewMockProvider(missingTier(), missingTier(), MockResponse{Content: easySet})
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), worksheetRequest())
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) || inv.Schema != "worksheet-set-easy" {
		t.Fatalf("expected ErrInvalidResponse for the set schema, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), MockResponse{Content: easySet})
	p := WithRetry(mock, retryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Generate(ctx, worksheetRequest()); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() > 1 {
		t.Errorf("cancelled context should stop after the first attempt, got %d calls", mock.CallCount())
	}
}

func TestRetry_DeadlineNotRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: context.DeadlineExceeded}, MockResponse{Content: easySet})
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), worksheetRequest()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 1 * time.Millisecond, Err: errors.New("429")}},
		MockResponse{Content: easySet},
	)
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), worksheetRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{
		MaxAttempts: 5,
		InitialWait: 10 * time.Millisecond,
		MaxWait:     40 * time.Millisecond,
		Multiplier:  2.0,
	}}
	for attempt := range 6 {
		wait := r.backoff(attempt, errors.New("down"))
		if wait > 48*time.Millisecond {
			t.Errorf("attempt %d: wait %s exceeds the cap plus jitter", attempt, wait)
		}
	}
	if got := r.backoff(0, &ErrRateLimit{RetryAfter: 3 * time.Second}); got != 3*time.Second {
		t.Errorf("rate limit wait = %s, want 3s", got)
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig())
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}
