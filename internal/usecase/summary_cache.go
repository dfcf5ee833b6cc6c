package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gtservice/gtledger/internal/infrastructure/logger"
)

func summaryCacheKey(year, month int) string {
	return fmt.Sprintf("accounting:summary:%d:%02d", year, month)
}

// invalidateSummary drops the cached yearly and monthly summaries covering at.
// Failures are logged; the entries expire on their own.
func invalidateSummary(ctx context.Context, cache Cache, log zerolog.Logger, at time.Time) {
	if cache == nil {
		return
	}
	for _, key := range []string{summaryCacheKey(at.Year(), 0), summaryCacheKey(at.Year(), int(at.Month()))} {
		if err := cache.Delete(ctx, key); err != nil {
			logger.FromContext(ctx, log).Warn().Err(err).Str("key", key).Msg("failed to invalidate summary cache")
		}
	}
}
