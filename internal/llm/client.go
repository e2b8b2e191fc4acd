// Package llm provides a client for OpenAI-style chat completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NoMessagesReply is returned instead of calling the endpoint when there is nothing to send.
const NoMessagesReply = "No messages to process."

// ErrNoResponse reports a well-formed response that carried no usable completion.
var ErrNoResponse = errors.New("no response from completion endpoint")

// ServiceError wraps every failure of the completion endpoint.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ai service: %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Message is one role-tagged prompt entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config describes how to reach the completion endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client issues chat completions.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type httpClient struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a completion client for the configured endpoint.
func NewClient(cfg Config) Client {
	return &httpClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error,omitempty"`
}

// Complete sends the messages in one request and returns the first choice's content.
func (c *httpClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return NoMessagesReply, nil
	}

	reqBytes, err := json.Marshal(chatRequest{Model: c.cfg.Model, Messages: messages})
	if err != nil {
		return "", &ServiceError{Op: "marshal request", Err: err}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBytes))
	if err != nil {
		return "", &ServiceError{Op: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ServiceError{Op: "call endpoint", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ServiceError{Op: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ServiceError{
			Op:  "call endpoint",
			Err: fmt.Errorf("status %s, body: %s", resp.Status, string(body)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ServiceError{Op: "decode response", Err: err}
	}
	if len(parsed.Error) > 0 && string(parsed.Error) != "null" {
		return "", &ServiceError{Op: "completion", Err: fmt.Errorf("endpoint error: %s", string(parsed.Error))}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &ServiceError{Op: "completion", Err: ErrNoResponse}
	}

	return parsed.Choices[0].Message.Content, nil
}
