package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/storm-data-agriculture/internal/domain"
	"github.com/couchcryptid/storm-data-agriculture/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Summary sources, used as the "source" metric label.
const (
	SourceKafka = "kafka"
	SourceHTTP  = "http"
)

// datasetNamespace scopes the v5 UUIDs derived for unkeyed dataset messages.
var datasetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/couchcryptid/storm-data-agriculture/datasets"))

// ClimateSummarizer implements Transformer by decoding a dataset message and
// computing its agriculture summary.
type ClimateSummarizer struct {
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	source  string
}

// NewSummarizer creates a ClimateSummarizer whose metrics are labelled with
// source. A nil clock uses real time.
func NewSummarizer(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, source string) *ClimateSummarizer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClimateSummarizer{
		clock:   clock,
		logger:  logger.With("source", source),
		metrics: metrics,
		source:  source,
	}
}

// Transform decodes raw as a dataset, summarizes it, and serializes the result.
// Decoding and validation failures return an error and no output.
func (s *ClimateSummarizer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	raws, err := domain.DecodeDataset(raw.Value)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	summary, err := s.Summarize(ctx, raws)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	return domain.SerializeSummary(datasetKey(raw), summary)
}

// Summarize validates and summarizes raws, stamping the generation time.
func (s *ClimateSummarizer) Summarize(_ context.Context, raws []domain.RawClimateRecord) (domain.Summary, error) {
	summary, err := domain.Summarize(raws)
	if err != nil {
		var missing *domain.MissingFieldError
		if errors.As(err, &missing) {
			s.metrics.ValidationFailures.WithLabelValues(string(missing.Field), s.source).Inc()
		}
		return domain.Summary{}, fmt.Errorf("summarize dataset: %w", err)
	}
	summary.GeneratedAt = s.clock.Now().UTC()

	if summary.Empty() {
		s.logger.Warn("empty dataset, averages unavailable")
		s.metrics.EmptyDatasets.WithLabelValues(s.source).Inc()
		return summary, nil
	}

	s.metrics.RecordsSummarized.WithLabelValues(s.source).Add(float64(summary.RecordCount))
	s.metrics.IdealDays.WithLabelValues(s.source).Add(float64(summary.IdealDayCount))
	for _, risk := range summary.RiskEvents {
		s.metrics.RiskEvents.WithLabelValues(risk.Label, s.source).Add(float64(risk.Count))
	}
	s.logger.Debug("dataset summarized",
		"records", summary.RecordCount,
		"ideal_days", summary.IdealDayCount,
		"locations", len(summary.Locations),
	)
	return summary, nil
}

// datasetKey returns the message key, or a deterministic UUID of the message's
// position so replays of an unkeyed message produce the same key.
func datasetKey(raw domain.RawEvent) []byte {
	if len(raw.Key) > 0 {
		return raw.Key
	}
	pos := fmt.Sprintf("%s/%d/%d", raw.Topic, raw.Partition, raw.Offset)
	return []byte(uuid.NewSHA1(datasetNamespace, []byte(pos)).String())
}
