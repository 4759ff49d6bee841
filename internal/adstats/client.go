// Package adstats pulls campaign and click/cost statistics from the ad
// platform's reporting API.
package adstats

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

	"jewelry-store/internal/config"
	"jewelry-store/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// ErrReportNotReady is returned while the platform is still building a report.
var ErrReportNotReady = errors.New("report is not ready")

// Source is the reporting API as used by ingestion.
type Source interface {
	Campaigns(ctx context.Context) ([]model.AdCampaign, error)
	Report(ctx context.Context, from, to time.Time) ([]model.AdStatistic, error)
}

// Client talks to the ad platform.
type Client struct {
	cfg    config.AdPlatformConfig
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a reporting API client.
func NewClient(cfg config.AdPlatformConfig, logger zerolog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger.With().Str("component", "adstats-client").Logger(),
	}
}

type campaignsRequest struct {
	Method string         `json:"method"`
	Params campaignParams `json:"params"`
}

type campaignParams struct {
	SelectionCriteria struct{} `json:"SelectionCriteria"`
	FieldNames        []string `json:"FieldNames"`
}

type campaignsResponse struct {
	Result struct {
		Campaigns []struct {
			ID     int64  `json:"Id"`
			Name   string `json:"Name"`
			Status string `json:"Status"`
		} `json:"Campaigns"`
	} `json:"result"`
	Error *struct {
		Code   int    `json:"error_code"`
		String string `json:"error_string"`
		Detail string `json:"error_detail"`
	} `json:"error"`
}

// Campaigns lists every campaign of the client account.
func (c *Client) Campaigns(ctx context.Context) ([]model.AdCampaign, error) {
	body, err := json.Marshal(campaignsRequest{
		Method: "get",
		Params: campaignParams{FieldNames: []string{"Id", "Name", "Status"}},
	})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, "/campaigns", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("campaigns request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("campaigns request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out campaignsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode campaigns: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("campaigns request failed: %d %s: %s", out.Error.Code, out.Error.String, out.Error.Detail)
	}

	now := time.Now().UTC()
	campaigns := make([]model.AdCampaign, 0, len(out.Result.Campaigns))
	for _, raw := range out.Result.Campaigns {
		campaigns = append(campaigns, model.AdCampaign{
			ID:        raw.ID,
			Name:      raw.Name,
			Status:    raw.Status,
			UpdatedAt: now,
		})
	}

	return campaigns, nil
}

type reportRequest struct {
	Params reportParams `json:"params"`
}

type reportParams struct {
	SelectionCriteria reportCriteria `json:"SelectionCriteria"`
	FieldNames        []string       `json:"FieldNames"`
	ReportName        string         `json:"ReportName"`
	ReportType        string         `json:"ReportType"`
	DateRangeType     string         `json:"DateRangeType"`
	Format            string         `json:"Format"`
	IncludeVAT        string         `json:"IncludeVAT"`
}

type reportCriteria struct {
	DateFrom string `json:"DateFrom"`
	DateTo   string `json:"DateTo"`
}

// Report requests the daily campaign report for [from, to], polling until
// the platform has built it or the configured attempts run out.
func (c *Client) Report(ctx context.Context, from, to time.Time) ([]model.AdStatistic, error) {
	body, err := json.Marshal(reportRequest{Params: reportParams{
		SelectionCriteria: reportCriteria{
			DateFrom: from.Format(time.DateOnly),
			DateTo:   to.Format(time.DateOnly),
		},
		FieldNames:    reportColumns,
		ReportName:    fmt.Sprintf("campaigns %s %s", from.Format(time.DateOnly), to.Format(time.DateOnly)),
		ReportType:    "CAMPAIGN_PERFORMANCE_REPORT",
		DateRangeType: "CUSTOM_DATE",
		Format:        "TSV",
		IncludeVAT:    "YES",
	}})
	if err != nil {
		return nil, err
	}

	attempts := c.cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryDelay), uint64(attempts-1)),
		ctx,
	)

	var stats []model.AdStatistic
	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		var err error
		stats, err = c.fetchReport(ctx, body)
		if errors.Is(err, ErrReportNotReady) {
			c.logger.Info().Int("attempt", attempt).Msg("report not ready, waiting")
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, policy)
	if err != nil {
		return nil, err
	}

	c.logger.Info().Int("rows", len(stats)).Int("attempts", attempt).Msg("report downloaded")
	return stats, nil
}

func (c *Client) fetchReport(ctx context.Context, body []byte) ([]model.AdStatistic, error) {
	req, err := c.newRequest(ctx, "/reports", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("processingMode", "auto")
	req.Header.Set("returnMoneyInMicros", "false")
	req.Header.Set("skipReportHeader", "true")
	req.Header.Set("skipReportSummary", "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return ParseReport(resp.Body)
	case http.StatusCreated, http.StatusAccepted:
		return nil, ErrReportNotReady
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("report request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
}

func (c *Client) newRequest(ctx context.Context, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept-Language", "ru")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.cfg.ClientLogin != "" {
		req.Header.Set("Client-Login", c.cfg.ClientLogin)
	}
	return req, nil
}
