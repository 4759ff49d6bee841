package acquiring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jewelry-store/internal/config"

	"github.com/rs/zerolog"
)

// Gateway creates payments.
type Gateway interface {
	// CreatePayment submits a payment. Repeating a call with the same
	// idempotency key returns the original payment.
	CreatePayment(ctx context.Context, req PaymentRequest, idempotencyKey string) (*Payment, error)
}

// client implements Gateway over the gateway's REST API.
type client struct {
	baseURL    string
	shopID     string
	secretKey  string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a gateway client.
func NewClient(cfg config.GatewayConfig, logger zerolog.Logger) Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		shopID:     cfg.ShopID,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "gateway-client").Logger(),
	}
}

// CreatePayment submits a payment to POST /payments.
func (c *client) CreatePayment(ctx context.Context, req PaymentRequest, idempotencyKey string) (*Payment, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build payment request: %w", err)
	}
	httpReq.SetBasicAuth(c.shopID, c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotence-Key", idempotencyKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("idempotency_key", idempotencyKey).Msg("payment request failed")
		return nil, fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("code", apiErr.Code).
			Str("description", apiErr.Description).
			Str("idempotency_key", idempotencyKey).
			Msg("gateway rejected payment")
		return nil, apiErr
	}

	var payment Payment
	if err := json.Unmarshal(raw, &payment); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	c.logger.Info().
		Str("payment_id", payment.ID).
		Str("status", payment.Status).
		Dur("duration", time.Since(start)).
		Msg("payment created")

	return &payment, nil
}
