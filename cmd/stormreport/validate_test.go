package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []domain.RawRecord {
	return []domain.RawRecord{
		{EventType: "TORNADO", Fatalities: 5, Injuries: 20, PropertyDamageMagnitude: 2.5, PropertyDamageExponentCode: "M"},
		{EventType: "FLOOD", Injuries: 1, PropertyDamageMagnitude: 1.2, PropertyDamageExponentCode: "B", CropDamageMagnitude: 3, CropDamageExponentCode: "k"},
		{EventType: "HAIL", PropertyDamageMagnitude: 4, PropertyDamageExponentCode: "9"},
		{EventType: "TORNADO", Fatalities: 1, CropDamageMagnitude: 7, CropDamageExponentCode: "?"},
		{EventType: "tornado", Injuries: 2},
		{EventType: "HEAT", Fatalities: 3, Injuries: 3},
	}
}

func TestValidateRecords_Passes(t *testing.T) {
	for _, topN := range []int{0, 2, 10} {
		phases := validateRecords(sampleRecords(), topN, domain.Metrics)
		require.Len(t, phases, 4)
		for _, p := range phases {
			assert.Truef(t, p.passed(), "top %d, phase %s: %v", topN, p.name, p.errors)
		}
	}
}

func TestValidateRecords_Empty(t *testing.T) {
	for _, p := range validateRecords(nil, 10, domain.Metrics) {
		assert.Truef(t, p.passed(), "phase %s: %v", p.name, p.errors)
	}
}

func TestValidateRecords_MockDataset(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, generateMock(&buf, 500, 42))

	records := parseMockRecords(t, buf.Bytes())
	require.Len(t, records, 500)

	for _, p := range validateRecords(records, 10, domain.Metrics) {
		assert.Truef(t, p.passed(), "phase %s: %v", p.name, p.errors)
	}
}

func TestValidateConservation_DetectsMismatch(t *testing.T) {
	normalized := domain.NormalizeAll(sampleRecords())
	table := domain.Aggregate(normalized[:3])

	p := validateConservation(normalized, table)
	assert.False(t, p.passed())
}

func TestPrintPhases(t *testing.T) {
	ok := &phase{name: "Good"}
	bad := &phase{name: "Bad"}
	bad.errorf("row %d broken", 3)

	var buf bytes.Buffer
	assert.False(t, printPhases(&buf, []*phase{ok, bad}, 12))

	out := buf.String()
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "FAIL (1 errors)")
	assert.Contains(t, out, "[1] row 3 broken")
	assert.Contains(t, out, "Records: 12")
	assert.Contains(t, out, "Validation FAILED.")

	buf.Reset()
	assert.True(t, printPhases(&buf, []*phase{ok}, 1))
	assert.Contains(t, buf.String(), "All validations passed.")
}

func TestCloseEnough(t *testing.T) {
	assert.True(t, closeEnough(0, 0))
	assert.True(t, closeEnough(0.1+0.2, 0.3))
	assert.True(t, closeEnough(1e15, 1e15+0.1))
	assert.False(t, closeEnough(1, 1.001))
}

func TestApplyFlagOverrides(t *testing.T) {
	root := newRootCmd()
	require.NoError(t, root.ParseFlags([]string{"--input", "data/x.csv", "--top", "3"}))

	cfg := &config.Config{InputPath: "data/default.csv", OutputDir: "out", TopN: 10}
	require.NoError(t, applyFlagOverrides(root, cfg))

	assert.Equal(t, "data/x.csv", cfg.InputPath)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 3, cfg.TopN)
}

func parseMockRecords(t *testing.T, data []byte) []domain.RawRecord {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mock.csv")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	a := &app{
		cfg:    &config.Config{InputPath: path, BatchSize: 100},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	records, err := loadRecords(context.Background(), a)
	require.NoError(t, err)
	return records
}

func TestApplyFlagOverrides_Top(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    int
		wantErr bool
	}{
		{name: "zero is allowed", arg: "0", want: 0},
		{name: "positive", arg: "7", want: 7},
		{name: "negative rejected", arg: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			require.NoError(t, root.ParseFlags([]string{"--top=" + tt.arg}))

			cfg := &config.Config{TopN: 10}
			err := applyFlagOverrides(root, cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "--top")
				assert.Equal(t, 10, cfg.TopN)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.TopN)
		})
	}
}

func TestParseMetrics(t *testing.T) {
	all, err := parseMetrics(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Metrics, all)

	got, err := parseMetrics([]string{"crop", "fatalities"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Metric{domain.MetricCropDamage, domain.MetricFatalities}, got)

	_, err = parseMetrics([]string{"deaths"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--metric")
}

func TestValidateRanking_SelectedMetrics(t *testing.T) {
	table := domain.Aggregate(domain.NormalizeAll(sampleRecords()))

	p := validateRanking(table, 2, []domain.Metric{domain.MetricPropertyDamage})
	assert.True(t, p.passed(), p.errors)
}
