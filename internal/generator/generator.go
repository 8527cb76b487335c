package generator

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

//go:embed prompt/good_morning.yaml
var goodMorningYAML []byte

// FallbackText is the static greeting used when generation fails. A missed
// generation must never stop delivery.
const FallbackText = "I hope today treats you gently and brings you something to smile about 🙂"

// themes nudge the model away from producing the same message every day.
var themes = []string{"serendipity", "adventure", "quote", "joy", "calm", "hope", "coffee", "work"}

const (
	promptHistorySize = 3
	maxAttempts       = 3
	retryBackoff      = 2 * time.Second
)

type prompt struct {
	SystemPrompt string `yaml:"system_prompt"`
	UserPrompt   string `yaml:"user_prompt"`
}

// ChatClient is the slice of the OpenAI client the generator needs.
// *openai.Client satisfies it.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// PromptHistory supplies previously generated texts so each new message can
// be steered away from them.
type PromptHistory interface {
	LastGenerated(ctx context.Context, n int) ([]string, error)
	RecordGenerated(ctx context.Context, text string) error
}

// Generator produces the daily greeting text via the OpenAI chat API.
type Generator struct {
	client  ChatClient
	history PromptHistory
	log     *zap.Logger
	backoff time.Duration
}

func New(client ChatClient, history PromptHistory, log *zap.Logger) *Generator {
	return &Generator{client: client, history: history, log: log, backoff: retryBackoff}
}

// NewClient builds the real OpenAI client from an API key.
func NewClient(apiKey string) *openai.Client {
	return openai.NewClient(apiKey)
}

// Generate returns the complete morning message for the recipient, always
// prefixed with the permanent greeting. It fails soft: after exhausting
// retries it logs a warning and returns the static fallback text.
func (g *Generator) Generate(ctx context.Context, recipientName string) string {
	raw, err := g.fetch(ctx)
	if err != nil {
		g.log.Warn("message generation failed, using fallback greeting", zap.Error(err))
		raw = FallbackText
	} else if err := g.history.RecordGenerated(ctx, raw); err != nil {
		g.log.Warn("failed to record generated text", zap.Error(err))
	}
	return fmt.Sprintf("Доброго ранку %s, %s", recipientName, raw)
}

// fetch issues the chat completion with a thin retry wrapper.
func (g *Generator) fetch(ctx context.Context) (string, error) {
	var p prompt
	if err := yaml.Unmarshal(goodMorningYAML, &p); err != nil {
		return "", fmt.Errorf("parsing prompt yaml: %w", err)
	}

	userPrompt := strings.TrimSpace(p.UserPrompt)
	userPrompt += fmt.Sprintf(" Today's theme is %q. ", themes[rand.Intn(len(themes))])

	last, err := g.history.LastGenerated(ctx, promptHistorySize)
	if err != nil {
		g.log.Warn("failed to load prompt history", zap.Error(err))
	} else if len(last) > 0 {
		userPrompt += fmt.Sprintf("Please create a new message that is completely different from these. Previously generated messages: %s. ", strings.Join(last, " | "))
	}
	userPrompt += "Add a simple smile emoji at the end."

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: openai.GPT4oMini,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: strings.TrimSpace(p.SystemPrompt)},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
		})
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("openai returned no choices")
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		lastErr = err
		g.log.Warn("openai request failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(g.backoff):
			}
		}
	}
	return "", fmt.Errorf("openai request failed after %d attempts: %w", maxAttempts, lastErr)
}
