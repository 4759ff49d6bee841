package promocode

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"jewelry-store/internal/model"

	"github.com/rs/zerolog"
)

// readSet decodes a gzipped stream holding one JSON promo definition per
// line. Lines that fail to parse or validate are skipped and logged.
func readSet(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) (Set, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		logger.Error().Err(err).Str("source", source).Msg("failed to create gzip reader")
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	set := NewSet(1024)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				logger.Warn().Str("source", source).Msg("promo loading cancelled")
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.PromoCode
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			logger.Warn().Err(err).Str("source", source).Int("line", lineNo).Msg("skipping malformed promo line")
			skipped++
			continue
		}
		if err := p.Validate(); err != nil {
			logger.Warn().Err(err).Str("source", source).Str("promo_code", p.Name).Int("line", lineNo).Msg("skipping invalid promo definition")
			skipped++
			continue
		}
		set.Add(p)
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Str("source", source).Msg("error reading promo file")
		return nil, fmt.Errorf("error reading promo file %s: %w", source, err)
	}

	logger.Info().
		Str("source", source).
		Int("loaded", set.Size()).
		Int("skipped", skipped).
		Msg("promo file loaded")

	return set, nil
}
