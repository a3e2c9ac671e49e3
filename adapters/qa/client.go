// Package qa implements the client of the local question-answering endpoint.
package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/satriahrh/npctalk/domain/repositories"
)

const defaultEndpoint = "http://127.0.0.1:5000/ask"

// Client posts questions to the /ask endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure Client implements the AnswerClient interface
var _ repositories.AnswerClient = (*Client)(nil)

// askRequest is the JSON body sent to the endpoint
type askRequest struct {
	Question string `json:"question"`
}

// NewClient creates a new answer client. An empty endpoint selects the local default.
func NewClient(endpoint string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if endpoint == "" {
		endpoint = defaultEndpoint
		logger.Info("Using default answer endpoint", zap.String("endpoint", endpoint))
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid answer endpoint: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Ask posts the question, waits for the full response body and returns the
// concatenated answer. It fails on transport errors and non-2xx statuses only.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	requestBody, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Sending question", zap.String("endpoint", c.endpoint), zap.String("question", question))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	answer := ParseAnswer(string(body), c.logger)

	c.logger.Debug("Received answer",
		zap.Int("bodyBytes", len(body)),
		zap.Int("answerLength", len(answer)))

	return answer, nil
}

// StatusError is returned when the endpoint answers with a non-success status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("answer endpoint returned status %d: %s", e.StatusCode, e.Body)
}
