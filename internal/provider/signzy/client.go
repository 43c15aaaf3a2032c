// Package signzy implements the paid phone verifier client.
package signzy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/teddybearwork/pickme/internal/provider"
	"github.com/teddybearwork/pickme/internal/query"
	dErrors "github.com/teddybearwork/pickme/pkg/domain-errors"
)

// phoneCost is the reported credit charge for one successful phone
// verification.
const phoneCost = 2

// Client talks to the phone verifier's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string { return "signzy" }

type phoneRequest struct {
	Phone string `json:"phone"`
}

type phoneResponse struct {
	Result map[string]any `json:"result"`
	Error  string         `json:"error"`
}

func (c *Client) Lookup(ctx context.Context, q query.Query) (provider.Payload, error) {
	if q.Kind != query.KindPhone {
		return provider.Payload{}, dErrors.Newf(dErrors.CodeInvalidInput, "unsupported kind %q", q.Kind)
	}

	body, err := json.Marshal(phoneRequest{Phone: q.NormalizedValue})
	if err != nil {
		return provider.Payload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/phone", bytes.NewReader(body))
	if err != nil {
		return provider.Payload{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return provider.Payload{}, fmt.Errorf("verifier request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return provider.Payload{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return provider.Payload{}, fmt.Errorf("verifier returned %d", resp.StatusCode)
	}

	var parsed phoneResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return provider.Payload{}, fmt.Errorf("decode verifier response: %w", err)
	}
	if parsed.Error != "" {
		return provider.Payload{}, fmt.Errorf("verification failed: %s", parsed.Error)
	}
	if len(parsed.Result) == 0 {
		return provider.Payload{}, errors.New("verifier returned no result")
	}

	fields := make(map[string]string, len(parsed.Result))
	for key, value := range parsed.Result {
		if s, ok := value.(string); ok {
			fields[key] = s
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			fields[key] = fmt.Sprint(value)
			continue
		}
		fields[key] = string(encoded)
	}

	return provider.Payload{Fields: fields, CostCredits: phoneCost}, nil
}
