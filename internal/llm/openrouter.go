package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	defaultOpenRouterAppTitle = "worksheetgen"
)

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter's
// OpenAI-compatible API. Requests carry the app attribution headers
// OpenRouter uses for its usage rankings.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	title := cfg.AppTitle
	if title == "" {
		title = defaultOpenRouterAppTitle
	}
	headers := map[string]string{"X-Title": title}
	if cfg.Referer != "" {
		headers["HTTP-Referer"] = cfg.Referer
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
		Headers: headers,
	})
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// headerTransport adds fixed headers to every request.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
