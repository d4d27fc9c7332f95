package classify

import (
	"context"
	"log/slog"
)

// EnrichedClassifier consults an enrichment strategy first and falls back to
// the deterministic domain classifier whenever enrichment fails. A failing
// enrichment source can therefore never fail a sync batch.
type EnrichedClassifier struct {
	enrichment Classifier
	fallback   Classifier
	logger     *slog.Logger
}

// NewEnrichedClassifier wraps an enrichment strategy with a deterministic
// fallback.
func NewEnrichedClassifier(enrichment, fallback Classifier, logger *slog.Logger) *EnrichedClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichedClassifier{
		enrichment: enrichment,
		fallback:   fallback,
		logger:     logger,
	}
}

func (c *EnrichedClassifier) Classify(ctx context.Context, fromAddress string) (string, error) {
	name, err := c.enrichment.Classify(ctx, fromAddress)
	if err == nil && name != "" {
		return name, nil
	}
	if err != nil {
		c.logger.Warn("sender enrichment failed, using domain classifier",
			"error", err)
	}
	return c.fallback.Classify(ctx, fromAddress)
}
