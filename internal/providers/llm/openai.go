package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	System      string
	Timeout     time.Duration
}

// OpenAI talks to a chat-completions endpoint. The reply is delivered as a single chunk.
type OpenAI struct {
	opt    OpenAIOptions
	client *http.Client
}

func NewOpenAI(opt OpenAIOptions) *OpenAI {
	if opt.BaseURL == "" {
		opt.BaseURL = DefaultOpenAIBaseURL
	}
	if opt.Model == "" {
		opt.Model = "gpt-4"
	}
	if opt.Timeout <= 0 {
		opt.Timeout = 60 * time.Second
	}
	return &OpenAI{opt: opt, client: &http.Client{Timeout: opt.Timeout}}
}

func (o *OpenAI) Close() error {
	o.client.CloseIdleConnections()
	return nil
}

func (o *OpenAI) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, 1)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		text, err := o.complete(ctx, prompt)
		if err != nil {
			errs <- err
			return
		}
		out <- text
	}()

	return out, errs
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	msgs := make([]chatMessage, 0, 2)
	if o.opt.System != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: o.opt.System})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: prompt})

	b, err := json.Marshal(chatRequest{
		Model:       o.opt.Model,
		Messages:    msgs,
		Temperature: o.opt.Temperature,
		MaxTokens:   o.opt.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := strings.TrimRight(o.opt.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.opt.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if cr.Error != nil {
		return "", fmt.Errorf("openai error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return cr.Choices[0].Message.Content, nil
}

// StatusError is a non-2xx reply from the provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying the same request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
