package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
	"github.com/couchcryptid/storm-impact-report/internal/report"
)

// BatchExtractor reads up to batchSize raw records from the source. It
// returns io.EOF once the source is exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error)
}

// ReportSink delivers a finished report somewhere: files, Kafka, memory.
type ReportSink interface {
	Name() string
	Publish(ctx context.Context, rep report.Report) error
}

// Options tunes a pipeline run. TopN is passed to the ranker as is, so zero
// or less yields empty panels.
type Options struct {
	BatchSize       int
	TopN            int
	PublishAttempts int
	RetryBackoff    time.Duration
	MaxBackoff      time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.PublishAttempts <= 0 {
		o.PublishAttempts = 5
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 200 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 5 * time.Second
	}
	return o
}

// Pipeline streams records through normalization and aggregation, builds the
// report, and hands it to every sink.
type Pipeline struct {
	extractor BatchExtractor
	sinks     []ReportSink
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options

	ready  atomic.Bool
	mu     sync.RWMutex
	report report.Report
}

// New creates a Pipeline with the given source, sinks, and observability.
func New(e BatchExtractor, sinks []ReportSink, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		extractor: e,
		sinks:     sinks,
		logger:    logger,
		metrics:   metrics,
		opts:      opts.withDefaults(),
	}
}

// CheckReadiness returns nil once a report has been built.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("report has not been generated yet")
	}
	return nil
}

// Report returns the last report built, if any.
func (p *Pipeline) Report() (report.Report, bool) {
	if !p.ready.Load() {
		return report.Report{}, false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.report, true
}

// Run loads the whole dataset, builds the report, and publishes it.
func (p *Pipeline) Run(ctx context.Context) (report.Report, error) {
	p.logger.Info("pipeline started", "batch_size", p.opts.BatchSize, "top_n", p.opts.TopN)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := time.Now()
	acc, err := p.load(ctx)
	if err != nil {
		return report.Report{}, err
	}
	p.metrics.StageDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())

	start = time.Now()
	table := acc.Table()
	rep := report.Build(table, report.Options{TopN: p.opts.TopN, Records: acc.Records()})
	p.metrics.EventTypes.Set(float64(table.Len()))
	p.metrics.StageDuration.WithLabelValues("report").Observe(time.Since(start).Seconds())

	p.mu.Lock()
	p.report = rep
	p.mu.Unlock()
	p.ready.Store(true)

	p.logger.Info("report built",
		"records", acc.Records(),
		"event_types", table.Len(),
		"top_n", p.opts.TopN,
	)

	start = time.Now()
	for _, sink := range p.sinks {
		if err := p.publish(ctx, sink, rep); err != nil {
			return rep, err
		}
	}
	p.metrics.StageDuration.WithLabelValues("publish").Observe(time.Since(start).Seconds())

	return rep, nil
}

// load drains the extractor into an accumulator, normalizing as it goes so
// the raw dataset is never held in memory.
func (p *Pipeline) load(ctx context.Context) (*domain.Accumulator, error) {
	acc := domain.NewAccumulator()
	audit := newExponentAudit()

	for {
		batch, err := p.extractor.ExtractBatch(ctx, p.opts.BatchSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("extract batch: %w", err)
		}

		p.metrics.RecordsLoaded.Add(float64(len(batch)))
		p.metrics.BatchSize.Observe(float64(len(batch)))

		for _, raw := range batch {
			audit.observe(raw)
			acc.Add(domain.Normalize(raw))
		}
	}

	audit.record(p.metrics)
	audit.log(p.logger)
	return acc, nil
}

// publish delivers the report to one sink, retrying with exponential backoff.
func (p *Pipeline) publish(ctx context.Context, sink ReportSink, rep report.Report) error {
	backoff := p.opts.RetryBackoff

	var err error
	for attempt := 1; attempt <= p.opts.PublishAttempts; attempt++ {
		err = sink.Publish(ctx, rep)
		if err == nil {
			p.metrics.ReportPublishes.WithLabelValues(sink.Name(), "success").Inc()
			p.logger.Info("report published", "sink", sink.Name(), "attempt", attempt)
			return nil
		}

		p.metrics.ReportPublishes.WithLabelValues(sink.Name(), "error").Inc()
		p.logger.Warn("report publish failed",
			"sink", sink.Name(),
			"attempt", attempt,
			"max_attempts", p.opts.PublishAttempts,
			"error", err,
		)

		if attempt == p.opts.PublishAttempts || ctx.Err() != nil {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, p.opts.MaxBackoff)
	}
	return fmt.Errorf("publish report to %s: %w", sink.Name(), err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
