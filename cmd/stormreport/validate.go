package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/spf13/cobra"
)

// shards is how many partial accumulators the merge check splits records into.
const shards = 4

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (a *app) validateCmd() *cobra.Command {
	var metricNames []string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check aggregation and ranking invariants against a dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			metrics, err := parseMetrics(metricNames)
			if err != nil {
				return err
			}

			records, err := loadRecords(cmd.Context(), a)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "=== Storm Impact Validation ===")
			fmt.Fprintln(out)

			phases := validateRecords(records, a.cfg.TopN, metrics)
			if !printPhases(out, phases, len(records)) {
				return errors.New("validation failed")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&metricNames, "metric", nil,
		"metrics whose rankings are checked (fatalities, injuries, property, crop); default all")
	return cmd
}

// parseMetrics resolves --metric values; none means every metric.
func parseMetrics(names []string) ([]domain.Metric, error) {
	if len(names) == 0 {
		return domain.Metrics, nil
	}
	metrics := make([]domain.Metric, 0, len(names))
	for _, name := range names {
		m, err := domain.ParseMetric(name)
		if err != nil {
			return nil, fmt.Errorf("invalid --metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

func loadRecords(ctx context.Context, a *app) ([]domain.RawRecord, error) {
	reader, err := csvfile.Open(a.cfg.InputPath, a.logger)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var records []domain.RawRecord
	for {
		batch, err := reader.ExtractBatch(ctx, a.cfg.BatchSize)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
		a.logger.Debug("dataset batch read", "rows_read", reader.Rows())
	}
}

func validateRecords(records []domain.RawRecord, topN int, metrics []domain.Metric) []*phase {
	normalized := domain.NormalizeAll(records)
	table := domain.Aggregate(normalized)

	return []*phase{
		validateNormalization(records, normalized),
		validateConservation(normalized, table),
		validateMerge(normalized, table),
		validateRanking(table, topN, metrics),
	}
}

func validateNormalization(records []domain.RawRecord, normalized []domain.NormalizedRecord) *phase {
	p := &phase{name: "Normalization"}
	for i, raw := range records {
		n := normalized[i]
		if want := raw.PropertyDamageMagnitude * domain.DecodeExponent(raw.PropertyDamageExponentCode); n.PropertyDamageUSD != want {
			p.errorf("row %d: property damage %v, want %v", i+1, n.PropertyDamageUSD, want)
		}
		if want := raw.CropDamageMagnitude * domain.DecodeExponent(raw.CropDamageExponentCode); n.CropDamageUSD != want {
			p.errorf("row %d: crop damage %v, want %v", i+1, n.CropDamageUSD, want)
		}
		if n.Fatalities != raw.Fatalities || n.Injuries != raw.Injuries {
			p.errorf("row %d: health counts changed during normalization", i+1)
		}
		if n.EventType != raw.EventType {
			p.errorf("row %d: event type %q, want %q", i+1, n.EventType, raw.EventType)
		}
	}
	return p
}

func validateConservation(normalized []domain.NormalizedRecord, table *domain.Table) *phase {
	p := &phase{name: "Aggregation conservation"}

	var want domain.AggregateRow
	distinct := make(map[string]struct{})
	for _, n := range normalized {
		want.TotalFatalities += n.Fatalities
		want.TotalInjuries += n.Injuries
		want.TotalPropertyDamageUSD += n.PropertyDamageUSD
		want.TotalCropDamageUSD += n.CropDamageUSD
		distinct[n.EventType] = struct{}{}
	}

	got := table.Totals()
	for _, m := range domain.Metrics {
		if !closeEnough(got.Value(m), want.Value(m)) {
			p.errorf("%s: table total %v, input total %v", m, got.Value(m), want.Value(m))
		}
	}
	if table.Len() != len(distinct) {
		p.errorf("table has %d groups, input has %d distinct event types", table.Len(), len(distinct))
	}
	return p
}

func validateMerge(normalized []domain.NormalizedRecord, table *domain.Table) *phase {
	p := &phase{name: "Partitioned merge equivalence"}

	parts := make([]*domain.Accumulator, shards)
	for i := range parts {
		parts[i] = domain.NewAccumulator()
	}
	for i, n := range normalized {
		parts[i%shards].Add(n)
	}
	merged := parts[0]
	for _, part := range parts[1:] {
		merged.Merge(part)
	}

	got := merged.Table()
	if got.Len() != table.Len() {
		p.errorf("merged table has %d groups, single pass has %d", got.Len(), table.Len())
	}
	for _, row := range table.Rows() {
		other, ok := got.Get(row.EventType)
		if !ok {
			p.errorf("%q missing from merged table", row.EventType)
			continue
		}
		for _, m := range domain.Metrics {
			if !closeEnough(other.Value(m), row.Value(m)) {
				p.errorf("%q %s: merged %v, single pass %v", row.EventType, m, other.Value(m), row.Value(m))
			}
		}
	}
	return p
}

func validateRanking(table *domain.Table, topN int, metrics []domain.Metric) *phase {
	p := &phase{name: "Ranking order and cutoff"}
	for _, m := range metrics {
		ranked := domain.Rank(table, m, topN)
		if want := min(max(topN, 0), table.Len()); len(ranked.Rows) != want {
			p.errorf("%s: %d ranked rows, want %d", m, len(ranked.Rows), want)
		}
		for i := 1; i < len(ranked.Rows); i++ {
			if ranked.Rows[i].Value(m) > ranked.Rows[i-1].Value(m) {
				p.errorf("%s: rank %d (%q) exceeds rank %d (%q)",
					m, i+1, ranked.Rows[i].EventType, i, ranked.Rows[i-1].EventType)
			}
		}
		for _, row := range ranked.Rows {
			if _, ok := table.Get(row.EventType); !ok {
				p.errorf("%s: ranked %q not in table", m, row.EventType)
			}
		}
	}
	return p
}

func printPhases(w io.Writer, phases []*phase, records int) bool {
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-36s %s\n", p.name, status)
	}
	fmt.Fprintf(w, "\nRecords: %d\n", records)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
	} else {
		fmt.Fprintln(w, "\nValidation FAILED.")
	}
	return allPassed
}

// closeEnough compares float sums that may differ by summation order.
func closeEnough(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
