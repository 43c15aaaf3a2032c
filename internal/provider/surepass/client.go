// Package surepass implements the paid document verifier client covering
// aadhaar, PAN, and driving licence lookups.
package surepass

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

// endpoint carries the API path and reported credit cost per kind.
type endpoint struct {
	path string
	cost int
}

var endpoints = map[query.Kind]endpoint{
	query.KindAadhaar:        {path: "/aadhaar-validation/aadhaar-validation", cost: 3},
	query.KindPAN:            {path: "/pan/pan", cost: 2},
	query.KindDrivingLicense: {path: "/driving-license/driving-license", cost: 1},
}

// Client talks to the verifier's REST API with bearer-token auth.
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

func (c *Client) Name() string { return "surepass" }

type verifyRequest struct {
	IDNumber string `json:"id_number"`
}

type verifyResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (c *Client) Lookup(ctx context.Context, q query.Query) (provider.Payload, error) {
	ep, ok := endpoints[q.Kind]
	if !ok {
		return provider.Payload{}, dErrors.Newf(dErrors.CodeInvalidInput, "unsupported kind %q", q.Kind)
	}

	body, err := json.Marshal(verifyRequest{IDNumber: q.NormalizedValue})
	if err != nil {
		return provider.Payload{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ep.path, bytes.NewReader(body))
	if err != nil {
		return provider.Payload{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var parsed verifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return provider.Payload{}, fmt.Errorf("decode verifier response: %w", err)
	}
	if !parsed.Success {
		return provider.Payload{}, fmt.Errorf("verification failed: %s", parsed.Message)
	}

	return provider.Payload{
		Fields:      flatten(parsed.Data),
		CostCredits: ep.cost,
	}, nil
}

// flatten renders the response document as string fields. Nested values are
// JSON-encoded rather than dropped.
func flatten(data map[string]any) map[string]string {
	fields := make(map[string]string, len(data))
	for key, value := range data {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case nil:
			continue
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				fields[key] = fmt.Sprint(v)
				continue
			}
			fields[key] = string(encoded)
		}
	}
	return fields
}
