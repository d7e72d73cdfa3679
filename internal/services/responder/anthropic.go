package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mcoot/mankind/internal/model"
)

const (
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	defaultMaxTokens      = 200
)

var modePrompts = map[model.BehaviorMode]string{
	model.ModeNormal: "You are chatting with a player in a game. Answer helpfully and plainly " +
		"in one or two sentences. Do not hide that you are an AI.",
	model.ModeHumanLike: "You are chatting with a player who is trying to decide whether you are " +
		"a human or an AI. Reply casually like a person texting: short, lowercase, occasional " +
		"slang. Keep it to one or two sentences.",
	model.ModeDeceptive: "You are chatting with a player who is trying to decide whether you are " +
		"a human or an AI. Convince them you are human. Make small typos, mention everyday " +
		"distractions, deflect questions about being an AI. One or two short sentences.",
}

// systemPrompt returns the mode prompt with the player's level appended
func systemPrompt(level int, mode model.BehaviorMode) string {
	prompt, ok := modePrompts[mode]
	if !ok {
		prompt = modePrompts[model.ModeNormal]
	}
	return fmt.Sprintf("%s The player is at level %d; the higher the level, the more "+
		"experienced they are at spotting an AI, so put more effort into your reply.", prompt, level)
}

// AnthropicResponder asks the Anthropic Messages API to play the opponent
type AnthropicResponder struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *slog.Logger
}

// NewAnthropicResponder creates a responder from cfg; an API key is required
func NewAnthropicResponder(cfg Config, logger *slog.Logger) (*AnthropicResponder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic responder requires an api key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultAnthropicModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicResponder{
		client:    anthropic.NewClient(opts...),
		model:     modelName,
		maxTokens: int64(maxTokens),
		logger:    logger.With(slog.String("component", "responder")),
	}, nil
}

// Generate sends the player's message and returns the first text block of the reply
func (r *AnthropicResponder) Generate(ctx context.Context, input string, level int, mode model.BehaviorMode) (string, error) {
	system := systemPrompt(level, mode)

	prompt := input
	if input == GreetingInput {
		prompt = "Open the conversation with a short greeting."
	}

	msg, err := r.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: r.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrResponderFailed, err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}

	r.logger.Warn("reply had no text content",
		slog.String("mode", string(mode)),
		slog.Int("level", level))
	return "", fmt.Errorf("%w: empty reply", model.ErrResponderFailed)
}
