package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dog-meal-planner/internal/domain/nutrition"
	"dog-meal-planner/internal/platform/httpclient"
	"dog-meal-planner/internal/ports/energy"
)

var (
	ErrNotConfigured = errors.New("energy calculator not configured")
	ErrUnauthorized  = errors.New("energy calculator unauthorized")
	ErrUpstream      = errors.New("energy calculator upstream error")
)

const computePath = "/v1/energy"

type Config struct {
	BaseURL string
	APIKey  string // opcional

	APIKeyHeader string
	Timeout      time.Duration
	Transport    http.RoundTripper
}

// Client implementa energy.Calculator contra la calculadora RER/MER externa.
type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

var _ energy.Calculator = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.New(httpclient.Options{
		BaseURL:   strings.TrimSpace(cfg.BaseURL),
		Timeout:   timeout,
		Transport: cfg.Transport,
		UserAgent: "dog-meal-planner",
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

type computeRequest struct {
	Profile nutrition.DogProfile `json:"profile"`
}

// Compute pide el EnergyContext para el perfil. La respuesta se valida en el
// servicio, acá solo se traduce el transporte.
func (c *Client) Compute(ctx context.Context, in energy.Input) (nutrition.EnergyContext, error) {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	var out nutrition.EnergyContext
	err := c.http.DoJSON(ctx, http.MethodPost, computePath, headers, computeRequest{Profile: in.Profile}, &out)
	if err == nil {
		return out, nil
	}

	var herr *httpclient.HTTPError
	if errors.As(err, &herr) {
		switch {
		case herr.StatusCode == http.StatusUnauthorized || herr.StatusCode == http.StatusForbidden:
			return nutrition.EnergyContext{}, ErrUnauthorized
		case herr.Temporary():
			return nutrition.EnergyContext{}, fmt.Errorf("%w: %w: status=%d", ErrUpstream, energy.ErrTemporarilyUnavailable, herr.StatusCode)
		default:
			return nutrition.EnergyContext{}, fmt.Errorf("%w: status=%d", ErrUpstream, herr.StatusCode)
		}
	}
	if ctx.Err() != nil {
		return nutrition.EnergyContext{}, fmt.Errorf("%w: %w", ErrUpstream, ctx.Err())
	}
	// sin respuesta (timeout, conexión rechazada): se puede reintentar
	return nutrition.EnergyContext{}, fmt.Errorf("%w: %w: %v", ErrUpstream, energy.ErrTemporarilyUnavailable, err)
}
