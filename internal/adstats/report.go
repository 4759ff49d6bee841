package adstats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"jewelry-store/internal/model"

	"github.com/shopspring/decimal"
)

var reportColumns = []string{"Date", "CampaignId", "Impressions", "Clicks", "Cost"}

// ParseReport reads a TSV report whose first row names the columns.
func ParseReport(r io.Reader) ([]model.AdStatistic, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range reportColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("report is missing column %s", name)
		}
	}

	var stats []model.AdStatistic
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report line %d: %w", line, err)
		}
		if len(record) < len(header) {
			return nil, fmt.Errorf("report line %d has %d fields, want %d", line, len(record), len(header))
		}

		stat, err := parseRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("report line %d: %w", line, err)
		}
		stats = append(stats, stat)
	}

	return stats, nil
}

func parseRow(record []string, index map[string]int) (model.AdStatistic, error) {
	var stat model.AdStatistic
	var err error

	if stat.Date, err = time.Parse(time.DateOnly, record[index["Date"]]); err != nil {
		return stat, fmt.Errorf("invalid date: %w", err)
	}
	if stat.CampaignID, err = strconv.ParseInt(record[index["CampaignId"]], 10, 64); err != nil {
		return stat, fmt.Errorf("invalid campaign id: %w", err)
	}
	if stat.Impressions, err = parseCount(record[index["Impressions"]]); err != nil {
		return stat, fmt.Errorf("invalid impressions: %w", err)
	}
	if stat.Clicks, err = parseCount(record[index["Clicks"]]); err != nil {
		return stat, fmt.Errorf("invalid clicks: %w", err)
	}
	if stat.Cost, err = parseMoney(record[index["Cost"]]); err != nil {
		return stat, fmt.Errorf("invalid cost: %w", err)
	}

	return stat, nil
}

// The platform writes "--" for empty metrics.
func parseCount(s string) (int64, error) {
	if s == "--" || s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseMoney(s string) (decimal.Decimal, error) {
	if s == "--" || s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
