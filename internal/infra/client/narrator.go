package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/resilience"
)

var tracer = otel.Tracer("client")

// NarratorClient calls the external narrative agent over HTTP.
type NarratorClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewNarratorClient creates a new NarratorClient.
func NewNarratorClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *NarratorClient {
	return &NarratorClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// Narrate posts the result and its deterministic messages to the agent and
// returns the rewritten text.
func (c *NarratorClient) Narrate(ctx context.Context, req *domain.NarrativeRequest) (*domain.NarrativeResponse, error) {
	ctx, span := tracer.Start(ctx, "NarratorClient.Narrate")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", req.UserID),
		attribute.String("narrative.kind", string(req.Kind)),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding narrative request: %w", err)
	}

	var out domain.NarrativeResponse
	err = resilience.Call(ctx, c.cb, c.cfg, "narrator", func() error {
		url := fmt.Sprintf("%s/v1/narrative", c.baseURL)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return resilience.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("narrator returned status %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return resilience.Permanent(fmt.Errorf("narrator returned status %d", resp.StatusCode))
		}

		out = domain.NarrativeResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return resilience.Permanent(&domain.ErrMalformedNarrative{Reason: err.Error()})
		}
		if out.Summary == "" && len(out.Lines) == 0 {
			return resilience.Permanent(&domain.ErrMalformedNarrative{Reason: "empty summary and lines"})
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("narrative.tokens", out.TokensUsed.TotalTokens))
	return &out, nil
}
