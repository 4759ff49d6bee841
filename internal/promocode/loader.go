package promocode

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped promo files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based promo loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads a gzipped JSON-lines promo file.
func (l *fileLoader) Load(ctx context.Context, path string) (Set, error) {
	l.logger.Info().Str("file", path).Msg("loading promo file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open promo file")
		return nil, fmt.Errorf("failed to open promo file %s: %w", path, err)
	}
	defer file.Close()

	return readSet(ctx, file, path, l.logger)
}
