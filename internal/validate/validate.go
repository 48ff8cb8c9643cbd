// Package validate calls an OpenAI-compatible chat completions endpoint to
// judge whether flashcard words were used correctly in a chat message.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tandemchat/backend/internal/errors"
	"github.com/tandemchat/backend/internal/models"
)

// FallbackFeedback is returned whenever the model cannot be reached or its
// answer cannot be parsed. Review still proceeds with lexical matches only.
const FallbackFeedback = "AI validation unavailable."

// DefaultTimeout bounds a single validation round trip.
const DefaultTimeout = 10 * time.Second

// Result is the model's verdict on one message.
type Result struct {
	ValidWords []string `json:"valid_words"`
	Feedback   string   `json:"feedback"`
}

// Fallback returns the degraded result used when validation is unavailable.
func Fallback() Result {
	return Result{ValidWords: []string{}, Feedback: FallbackFeedback}
}

// Validator judges which of the matched words are used correctly in content.
type Validator interface {
	Validate(ctx context.Context, content string, matches []models.TickedNote, targetLang string) (Result, error)
}

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	apiKey      string
	apiURL      string
	model       string
	timeout     time.Duration
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different completions endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.apiURL = url }
}

// WithModel selects the model name sent in requests.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithTimeout overrides the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a validation client. The API key must not be empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrValidatorFailed, "validation API key is not set")
	}

	c := &Client{
		apiKey:      apiKey,
		apiURL:      "https://api.openai.com/v1/chat/completions",
		model:       "gpt-4o-mini",
		timeout:     DefaultTimeout,
		maxTokens:   300,
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{Timeout: c.timeout}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You are a language-learning assistant. A learner wrote a chat message while " +
	"practicing vocabulary. You are given the message and a list of candidate words the learner " +
	"may have used. Decide which candidate words are used correctly in context and give one short " +
	"sentence of feedback. Respond with JSON only, in the form " +
	`{"valid_words": ["word", ...], "feedback": "..."}.`

// Validate asks the model which matched words are used correctly. Any
// transport, API, or parse failure is returned as an error; callers are
// expected to fall back to Fallback().
func (c *Client) Validate(ctx context.Context, content string, matches []models.TickedNote, targetLang string) (Result, error) {
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		words = append(words, m.Word)
	}

	prompt := fmt.Sprintf(
		"Target language: %s\nCandidate words: %s\nMessage: %s",
		targetLang, strings.Join(words, ", "), content,
	)

	request := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrValidatorFailed, "failed to marshal validation request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrValidatorFailed, "failed to create validation request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, errors.Wrap(errors.ErrValidatorTimeout, "validation request timed out", err)
		}
		return Result{}, errors.Wrap(errors.ErrValidatorFailed, "failed to send validation request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, errors.New(errors.ErrValidatorFailed, fmt.Sprintf("validation API returned status %d", resp.StatusCode))
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return Result{}, errors.Wrap(errors.ErrValidatorFailed, "failed to decode validation response", err)
	}
	if response.Error != nil {
		return Result{}, errors.New(errors.ErrValidatorFailed, "validation API error: "+response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return Result{}, errors.New(errors.ErrValidatorFailed, "no validation choices returned")
	}

	return parseResult(response.Choices[0].Message.Content)
}

// parseResult extracts the verdict JSON from the model's reply, tolerating
// code fences around it.
func parseResult(content string) (Result, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Result{}, errors.Wrap(errors.ErrValidatorFailed, "failed to parse validation verdict", err)
	}
	if result.ValidWords == nil {
		result.ValidWords = []string{}
	}
	return result, nil
}
