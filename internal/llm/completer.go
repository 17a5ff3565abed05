package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultModel is used when no chat model is configured.
const DefaultModel = "glm-4-flash"

// ErrNotConfigured is returned when the provider credentials are missing.
var ErrNotConfigured = errors.New("llm provider is not configured")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter sends a conversation to a chat model and returns the text of
// the first answer.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// NewCompleter builds a ChatCompleter for opts.Provider. The OpenAI-compatible
// provider is the default and needs both a base URL and an API key.
func NewCompleter(ctx context.Context, opts Options) (ChatCompleter, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "openai"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	switch provider {
	case "openai":
		if strings.TrimSpace(opts.BaseURL) == "" || strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("%w: LLM_BASE_URL and LLM_API_KEY are required", ErrNotConfigured)
		}
		return NewOpenAICompleter(opts.APIKey, model, opts.BaseURL, opts.Timeout), nil
	case "gemini":
		if strings.TrimSpace(opts.APIKey) == "" {
			return nil, fmt.Errorf("%w: LLM_API_KEY is required", ErrNotConfigured)
		}
		return NewGeminiCompleter(ctx, opts.APIKey, model, opts.Timeout)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrNotConfigured, opts.Provider)
	}
}

// LazyCompleter defers provider construction to the first Complete call.
// A failed construction is retried by the next caller; a successful one is
// reused for the life of the value.
type LazyCompleter struct {
	mu      sync.Mutex
	factory func(context.Context) (ChatCompleter, error)
	inner   ChatCompleter
}

func NewLazyCompleter(factory func(context.Context) (ChatCompleter, error)) *LazyCompleter {
	return &LazyCompleter{factory: factory}
}

// LazyFromOptions is NewLazyCompleter over NewCompleter.
func LazyFromOptions(opts Options) *LazyCompleter {
	return NewLazyCompleter(func(ctx context.Context) (ChatCompleter, error) {
		return NewCompleter(ctx, opts)
	})
}

func (l *LazyCompleter) get(ctx context.Context) (ChatCompleter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner != nil {
		return l.inner, nil
	}
	c, err := l.factory(ctx)
	if err != nil {
		return nil, err
	}
	l.inner = c
	return c, nil
}

func (l *LazyCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	c, err := l.get(ctx)
	if err != nil {
		return "", err
	}
	return c.Complete(ctx, messages)
}
