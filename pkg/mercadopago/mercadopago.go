// Package mercadopago creates hosted checkout links via the Mercado Pago
// preference REST endpoint.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	statex "github.com/tiendita-labs/tiendita/agent/state"
)

const (
	defaultBaseURL       = "https://api.mercadopago.com"
	preferencePath       = "/checkout/preferences"
	maxResponseSizeBytes = 1 << 20
)

type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.mercadopago.com"`
	AccessToken string        `envconfig:"ACCESS_TOKEN" split_words:"true" required:"true"`
	WebhookURL  string        `envconfig:"WEBHOOK_URL" split_words:"true"`
	SuccessURL  string        `envconfig:"SUCCESS_URL" split_words:"true"`
	FailureURL  string        `envconfig:"FAILURE_URL" split_words:"true"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type Client struct {
	baseURL     string
	accessToken string
	webhookURL  string
	successURL  string
	failureURL  string
	httpClient  *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid mercadopago base url: %w", err)
	}

	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, errors.New("mercadopago access token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:     baseURL,
		accessToken: token,
		webhookURL:  strings.TrimSpace(cfg.WebhookURL),
		successURL:  strings.TrimSpace(cfg.SuccessURL),
		failureURL:  strings.TrimSpace(cfg.FailureURL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

type preferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type preferenceRequest struct {
	Items             []preferenceItem  `json:"items"`
	ExternalReference string            `json:"external_reference,omitempty"`
	NotificationURL   string            `json:"notification_url,omitempty"`
	BackURLs          map[string]string `json:"back_urls,omitempty"`
}

type preferenceResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// CreatePaymentLink creates a checkout preference for the order and returns
// its init point URL. The order id travels as the external reference so the
// payment webhook can be correlated later.
func (c *Client) CreatePaymentLink(ctx context.Context, order *statex.Order) (string, error) {
	if order == nil || order.Empty() {
		return "", errors.New("mercadopago: order has no items")
	}

	req := preferenceRequest{
		Items:             make([]preferenceItem, 0, len(order.Items)),
		ExternalReference: order.ID,
		NotificationURL:   c.webhookURL,
	}
	for _, line := range order.Items {
		req.Items = append(req.Items, preferenceItem{
			Title:     line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	if c.successURL != "" || c.failureURL != "" {
		req.BackURLs = map[string]string{}
		if c.successURL != "" {
			req.BackURLs["success"] = c.successURL
		}
		if c.failureURL != "" {
			req.BackURLs["failure"] = c.failureURL
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("mercadopago: marshal preference: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+preferencePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("mercadopago: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("mercadopago: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("mercadopago: read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mercadopago: http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed preferenceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("mercadopago: decode response: %w", err)
	}
	if strings.TrimSpace(parsed.InitPoint) == "" {
		return "", errors.New("mercadopago: response has no init point")
	}
	return parsed.InitPoint, nil
}
