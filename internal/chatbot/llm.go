package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Completer produces a free-form reply for the general-intent fallback.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HTTPCompleter talks to a local chat-completion endpoint (ollama-style
// generate API). Calls are throttled with a token bucket so a chat burst
// cannot pile requests onto the model server.
type HTTPCompleter struct {
	endpoint string
	client   *http.Client
	lim      *rate.Limiter
}

func NewHTTPCompleter(endpoint string) *HTTPCompleter {
	return &HTTPCompleter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		lim:      rate.NewLimiter(rate.Limit(2), 5),
	}
}

var ErrThrottled = errors.New("chatbot: completion calls throttled")

func (c *HTTPCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.lim.Allow() {
		return "", ErrThrottled
	}

	body := map[string]any{
		"prompt": prompt,
		"stream": false,
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("chatbot: completion failed: %s", resp.Status)
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.Response == "" {
		return "", errors.New("chatbot: empty completion")
	}
	return out.Response, nil
}
