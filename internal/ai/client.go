package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/polisure/certprep-backend/internal/config"
	"github.com/polisure/certprep-backend/internal/model"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("ai assistance is disabled")

// Client wraps an OpenAI-compatible chat API with a Redis cache keyed by
// question fingerprint, so a popular question is only ever paid for once.
type Client struct {
	api      *openai.Client
	model    string
	rdb      *redis.Client
	cacheTTL time.Duration
	log      zerolog.Logger
}

// New returns a Client, or a disabled one when apiKey is empty. A disabled
// client answers every call with ErrDisabled instead of failing at startup.
func New(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *Client {
	c := &Client{
		model:    cfg.OpenAIModel,
		rdb:      rdb,
		cacheTTL: cfg.HintCacheTTL,
		log:      log.With().Str("component", "ai_client").Logger(),
	}
	if cfg.OpenAIKey != "" {
		c.api = openai.NewClient(cfg.OpenAIKey)
	}
	return c
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool { return c.api != nil }

// Hint returns a short nudge toward the right reasoning without revealing
// the answer.
func (c *Client) Hint(ctx context.Context, q model.Question) (string, error) {
	return c.cached(ctx, config.CacheKey.HintKey(Fingerprint(q)), func() (string, error) {
		prompt := fmt.Sprintf(
			"你是保險證照考試的輔導老師。針對下列題目給考生一個簡短提示，"+
				"引導思考方向，但絕對不能直接透露答案選項。\n\n題目：%s\n%s",
			q.Text, formatChoices(q))
		return c.complete(ctx, prompt)
	})
}

// Explain returns a short explanation of why the gold answer is correct,
// for reviewing wrong items after an attempt.
func (c *Client) Explain(ctx context.Context, row model.GradedRow) (string, error) {
	q := model.Question{ID: row.QuestionID, Text: row.Text, Choices: row.Choices}
	return c.cached(ctx, config.CacheKey.ExplainKey(Fingerprint(q)), func() (string, error) {
		prompt := fmt.Sprintf(
			"你是保險證照考試的輔導老師。考生答錯了下列題目，"+
				"請用兩三句話解釋為什麼正確答案是 %s。\n\n題目：%s\n%s\n考生作答：%s",
			strings.Join(row.Gold.Labels(), ""), row.Text, formatChoices(q),
			strings.Join(row.Submitted.Labels(), ""))
		return c.complete(ctx, prompt)
	})
}

func (c *Client) cached(ctx context.Context, key string, generate func() (string, error)) (string, error) {
	if c.api == nil {
		return "", ErrDisabled
	}

	hit, err := c.rdb.Get(ctx, key).Result()
	if err == nil && hit != "" {
		return hit, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Str("key", key).Msg("hint cache read failed")
	}

	text, err := generate()
	if err != nil {
		return "", err
	}

	if err := c.rdb.Set(ctx, key, text, c.cacheTTL).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("hint cache write failed")
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Fingerprint hashes a question's text and choices into a stable cache key
// component, independent of bank or attempt identity.
func Fingerprint(q model.Question) string {
	h := sha256.New()
	h.Write([]byte(q.Text))
	for _, choice := range q.Choices {
		h.Write([]byte{0})
		h.Write([]byte(choice.Text))
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func formatChoices(q model.Question) string {
	var b strings.Builder
	for _, c := range q.Choices {
		fmt.Fprintf(&b, "%s. %s\n", c.Label, c.Text)
	}
	return b.String()
}
