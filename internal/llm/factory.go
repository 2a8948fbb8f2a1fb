package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/worksheetgen/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with timeout, retry and logging middleware.
// eventRepo may be nil, in which case requests are not recorded.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	var p Provider = base
	if eventRepo != nil {
		p = WithLogging(p, cfg.Provider, eventRepo)
	}
	p = WithRetry(p, cfg.Retry)
	p = WithTimeout(p, cfg.Timeout)

	return p, nil
}

// NewProviderFromEnv resolves configuration from WORKSHEETGEN_* variables,
// falling back to the standard vendor API key variables when no provider
// was chosen explicitly and the default one has no key.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, Config, error) {
	cfg := ConfigFromEnv()
	cfg, err := Resolve(cfg, os.Getenv("WORKSHEETGEN_LLM_PROVIDER") != "")
	if err != nil {
		return nil, cfg, err
	}
	p, err := NewProvider(ctx, cfg, eventRepo)
	return p, cfg, err
}

// Resolve validates cfg. When the provider was not set explicitly and cfg
// is unusable, the discovered vendor configuration is used instead, keeping
// the retry and timeout settings of cfg.
func Resolve(cfg Config, explicit bool) (Config, error) {
	if err := cfg.Validate(); err == nil || explicit {
		return cfg, err
	}
	found, ok := DiscoverConfig()
	if !ok {
		return cfg, cfg.Validate()
	}
	found.Retry = cfg.Retry
	found.Timeout = cfg.Timeout
	return found, nil
}
