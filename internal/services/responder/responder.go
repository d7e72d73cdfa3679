package responder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/mankind/internal/dependencies/random"
	"github.com/mcoot/mankind/internal/model"
)

// GreetingInput is the reserved input that asks for an opening line
const GreetingInput = "greeting"

// Provider names accepted in Config.Provider
const (
	ProviderPhrases   = "phrases"
	ProviderAnthropic = "anthropic"
)

// Responder produces the opponent's reply to a player message
type Responder interface {
	Generate(ctx context.Context, input string, level int, mode model.BehaviorMode) (string, error)
}

// Config selects and tunes the responder implementation
type Config struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// New builds the responder named by cfg.Provider
func New(cfg Config, rnd random.Random, logger *slog.Logger) (Responder, error) {
	switch cfg.Provider {
	case "", ProviderPhrases:
		return NewPhraseResponder(rnd), nil
	case ProviderAnthropic:
		return NewAnthropicResponder(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown responder provider %q", cfg.Provider)
	}
}
