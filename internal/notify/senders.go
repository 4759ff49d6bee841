package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jewelry-store/internal/config"

	"github.com/rs/zerolog"
)

// PermanentError marks a delivery failure that retrying will not fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// classify turns an HTTP status into a retryable or permanent error.
func classify(provider string, status int, body []byte) error {
	err := fmt.Errorf("%s returned %d: %s", provider, status, strings.TrimSpace(string(body)))
	if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
		return &PermanentError{Err: err}
	}
	return err
}

// smsSender delivers messages through the SMS provider's HTTP API.
type smsSender struct {
	cfg    config.SMSConfig
	client *http.Client
	logger zerolog.Logger
}

// NewSMSSender creates the SMS sender.
func NewSMSSender(cfg config.SMSConfig, logger zerolog.Logger) Sender {
	return &smsSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "sms-sender").Logger(),
	}
}

type smsResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	StatusText string `json:"status_text"`
}

// Send calls GET /sms/send.
func (s *smsSender) Send(ctx context.Context, msg Message) error {
	q := url.Values{}
	q.Set("api_id", s.cfg.APIID)
	q.Set("to", strings.TrimPrefix(msg.Recipient, "+"))
	q.Set("msg", msg.Text)
	q.Set("json", "1")
	if s.cfg.Sender != "" {
		q.Set("from", s.cfg.Sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.cfg.BaseURL, "/")+"/sms/send?"+q.Encode(), nil)
	if err != nil {
		return &PermanentError{Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return classify("sms provider", resp.StatusCode, body)
	}

	var out smsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("failed to decode sms response: %w", err)
	}
	if out.Status != "OK" {
		return &PermanentError{Err: fmt.Errorf("sms provider rejected message: %d %s", out.StatusCode, out.StatusText)}
	}

	return nil
}

// telegramSender delivers messages with the Bot API sendMessage method.
type telegramSender struct {
	cfg    config.TelegramConfig
	client *http.Client
	logger zerolog.Logger
}

// NewTelegramSender creates the Telegram sender.
func NewTelegramSender(cfg config.TelegramConfig, logger zerolog.Logger) Sender {
	return &telegramSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "telegram-sender").Logger(),
	}
}

type telegramRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts to /bot<token>/sendMessage.
func (s *telegramSender) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(telegramRequest{ChatID: msg.Recipient, Text: msg.Text})
	if err != nil {
		return &PermanentError{Err: err}
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/bot" + s.cfg.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &PermanentError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return classify("telegram", resp.StatusCode, body)
	}

	var out telegramResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}
	if !out.OK {
		return &PermanentError{Err: fmt.Errorf("telegram rejected message: %s", out.Description)}
	}

	return nil
}
