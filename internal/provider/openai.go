package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/arimedia/mediaplanner/internal/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIProvider implements Provider against the OpenAI chat completions API
type OpenAIProvider struct {
	cfg     config.LLMConfig
	client  *http.Client
	backoff time.Duration
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		backoff: time.Second,
	}
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatReq struct {
	Model          string          `json:"model"`
	Messages       []chatMsg       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// CompleteJSON sends a chat completion request in JSON-object response mode,
// retrying with exponential backoff up to the configured retry budget.
func (p *OpenAIProvider) CompleteJSON(ctx context.Context, messages []Message, maxTokens int) (string, Usage, error) {
	apiKey := p.cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return "", Usage{}, fmt.Errorf("OpenAI API key not configured")
	}

	if maxTokens == 0 {
		maxTokens = p.cfg.MaxTokens
	}

	msgs := make([]chatMsg, len(messages))
	for i, m := range messages {
		msgs[i] = chatMsg{Role: m.Role, Content: m.Content}
	}
	body, err := json.Marshal(chatReq{
		Model:          p.cfg.Model,
		Messages:       msgs,
		Temperature:    p.cfg.Temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshal: %w", err)
	}

	baseURL := p.cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	var lastErr error
	tries := p.cfg.MaxRetries + 1
	if tries < 1 {
		tries = 1
	}
	for attempt := 0; attempt < tries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", Usage{}, fmt.Errorf("request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		content, usage, err := p.do(req)
		if err == nil {
			return content, usage, nil
		}
		lastErr = err

		if attempt < tries-1 {
			select {
			case <-time.After(p.backoff * time.Duration(1<<attempt)):
			case <-ctx.Done():
				return "", Usage{}, ctx.Err()
			}
		}
	}
	return "", Usage{}, lastErr
}

func (p *OpenAIProvider) do(req *http.Request) (string, Usage, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// include a bounded slice of the body in the error
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", Usage{}, errors.New(resp.Status + ": " + string(b))
	}

	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", Usage{}, fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("no choices in response")
	}

	usage := Usage{
		PromptTokens:     int64(out.Usage.PromptTokens),
		CompletionTokens: int64(out.Usage.CompletionTokens),
	}
	return out.Choices[0].Message.Content, usage, nil
}

// CalculateCost calculates the cost for a given token usage
func (p *OpenAIProvider) CalculateCost(usage Usage) float64 {
	inputCost := float64(usage.PromptTokens) / 1000.0 * p.cfg.CostPer1KInput
	outputCost := float64(usage.CompletionTokens) / 1000.0 * p.cfg.CostPer1KOutput
	return inputCost + outputCost
}
