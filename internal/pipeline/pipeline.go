package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-agriculture/internal/domain"
	"github.com/couchcryptid/storm-data-agriculture/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Reasons a dataset is skipped, used as the "reason" metric label.
const (
	skipDecode       = "decode"
	skipMissingField = "missing_field"
	skipOther        = "other"
)

// BatchExtractor reads up to batchSize dataset messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a dataset message into a summary event.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple summary events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

// Pipeline orchestrates the extract-summarize-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Ready reports whether at least one summary has been loaded.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// CheckReadiness returns nil if the pipeline has summarized at least one dataset,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not summarized any datasets yet")
	}
	return nil
}

// Run executes the batch summary loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-summarize-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.DatasetsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = initialBackoff

	loaded, ok := p.transformAndLoad(ctx, rawBatch, backoff)
	if !ok {
		return false
	}

	if loaded > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// transformAndLoad summarizes each dataset in the batch and loads the
// summaries, retrying the same summaries until the load succeeds. Offsets for
// the whole batch, skipped datasets included, are committed only after that.
// Returns the number of loaded summaries and false if the pipeline should stop.
func (p *Pipeline) transformAndLoad(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration) (int, bool) {
	outBatch := make([]domain.OutputEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		out, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.skipDataset(raw, err)
			continue
		}
		outBatch = append(outBatch, out)
	}

	if len(outBatch) > 0 {
		if !p.loadWithRetry(ctx, outBatch, backoff) {
			return 0, false
		}
		p.metrics.SummariesProduced.Add(float64(len(outBatch)))
	}

	for _, raw := range rawBatch {
		p.commitOffset(ctx, raw)
	}

	return len(outBatch), true
}

// loadWithRetry loads events until it succeeds or the context is cancelled.
func (p *Pipeline) loadWithRetry(ctx context.Context, events []domain.OutputEvent, backoff *time.Duration) bool {
	for {
		err := p.loader.LoadBatch(ctx, events)
		if err == nil {
			*backoff = initialBackoff
			return true
		}
		p.logger.Error("load batch failed, retrying",
			"error", err,
			"batch_size", len(events),
			"backoff", *backoff,
		)
		if !p.backoffOrStop(ctx, backoff) {
			return false
		}
	}
}

// skipDataset counts and logs a dataset that produced no summary, by reason.
func (p *Pipeline) skipDataset(raw domain.RawEvent, err error) {
	reason := skipOther
	attrs := []any{
		"error", err,
		"topic", raw.Topic,
		"partition", raw.Partition,
		"offset", raw.Offset,
	}

	var missing *domain.MissingFieldError
	switch {
	case errors.As(err, &missing):
		reason = skipMissingField
		attrs = append(attrs, "field", string(missing.Field), "record", missing.Record)
	case errors.Is(err, domain.ErrInvalidDataset):
		reason = skipDecode
	}

	p.metrics.TransformErrors.WithLabelValues(reason).Inc()
	p.logger.Warn("dataset skipped", append(attrs, "reason", reason)...)
}

// backoffOrStop checks for context cancellation, sleeps with the current backoff,
// and advances the backoff. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the message offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}
