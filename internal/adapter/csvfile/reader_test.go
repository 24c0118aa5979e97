package csvfile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRows = 8

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readAll(t *testing.T, r *Reader, batchSize int) []domain.RawRecord {
	t.Helper()
	var all []domain.RawRecord
	for {
		batch, err := r.ExtractBatch(context.Background(), batchSize)
		if errors.Is(err, io.EOF) {
			return all
		}
		require.NoError(t, err)
		require.NotEmpty(t, batch)
		require.LessOrEqual(t, len(batch), batchSize)
		all = append(all, batch...)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReader_PlainCSV(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "storm_sample.csv"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	assert.Equal(t, compressionNone, r.compression)

	records := readAll(t, r, 3)
	require.Len(t, records, sampleRows)
	assert.Equal(t, sampleRows, r.Rows())

	assert.Equal(t, domain.RawRecord{
		EventType:                  "TORNADO",
		Injuries:                   15,
		PropertyDamageMagnitude:    25,
		PropertyDamageExponentCode: "K",
	}, records[0])

	flood := records[3]
	assert.Equal(t, "FLOOD", flood.EventType)
	assert.Equal(t, 2.0, flood.Fatalities)
	assert.Equal(t, 3.0, flood.PropertyDamageMagnitude)
	assert.Equal(t, "M", flood.PropertyDamageExponentCode)
	assert.Equal(t, 1.0, flood.CropDamageMagnitude)
	assert.Equal(t, "B", flood.CropDamageExponentCode)

	assert.Equal(t, "?", records[4].PropertyDamageExponentCode)
	assert.Equal(t, "h", records[5].PropertyDamageExponentCode)
	assert.Equal(t, "HURRICANE/TYPHOON", records[7].EventType)
}

func TestReader_Bzip2(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "storm_sample.csv.bz2"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	assert.Equal(t, compressionBzip2, r.compression)
	assert.Len(t, readAll(t, r, 50), sampleRows)
}

func TestReader_Gzip(t *testing.T) {
	plain, err := os.ReadFile(filepath.Join("testdata", "storm_sample.csv"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "storm_sample.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write(plain)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	r, err := Open(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	assert.Equal(t, compressionGzip, r.compression)
	assert.Len(t, readAll(t, r, 2), sampleRows)
}

func TestReader_ExactBatchBoundary(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "storm_sample.csv"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	batch, err := r.ExtractBatch(context.Background(), sampleRows)
	require.NoError(t, err)
	assert.Len(t, batch, sampleRows)

	batch, err = r.ExtractBatch(context.Background(), sampleRows)
	require.ErrorIs(t, err, io.EOF)
	assert.Empty(t, batch)
}

func TestReader_HeaderCaseAndBOM(t *testing.T) {
	path := writeFile(t, "lower.csv", "\ufeffevtype,fatalities,injuries,propdmg,propdmgexp,cropdmg,cropdmgexp\n"+
		" FLOOD ,1,2,3,k,4,M\n")

	r, err := Open(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	records := readAll(t, r, 10)
	require.Len(t, records, 1)
	assert.Equal(t, " FLOOD ", records[0].EventType, "event type is kept verbatim")
	assert.Equal(t, 3.0, records[0].PropertyDamageMagnitude)
}

func TestReader_EmptyNumericIsZero(t *testing.T) {
	path := writeFile(t, "blank.csv", "EVTYPE,FATALITIES,INJURIES,PROPDMG,PROPDMGEXP,CROPDMG,CROPDMGEXP\nHAIL,,  ,5,K,,\n")

	r, err := Open(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	records := readAll(t, r, 10)
	require.Len(t, records, 1)
	assert.Equal(t, 0.0, records[0].Fatalities)
	assert.Equal(t, 0.0, records[0].Injuries)
	assert.Equal(t, 5.0, records[0].PropertyDamageMagnitude)
	assert.Equal(t, 0.0, records[0].CropDamageMagnitude)
}

func TestReader_NonNumericFailsFast(t *testing.T) {
	path := writeFile(t, "bad.csv", "EVTYPE,FATALITIES,INJURIES,PROPDMG,PROPDMGEXP,CROPDMG,CROPDMGEXP\n"+
		"HAIL,0,0,1,K,0,\n"+
		"WIND,0,many,1,K,0,\n")

	r, err := Open(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = r.ExtractBatch(context.Background(), 10)
	require.Error(t, err)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, ColInjuries, pe.Column)
	assert.Equal(t, "many", pe.Value)
	assert.Contains(t, err.Error(), "INJURIES")
}

func TestReader_RejectsNonFiniteAndNegative(t *testing.T) {
	const header = "EVTYPE,FATALITIES,INJURIES,PROPDMG,PROPDMGEXP,CROPDMG,CROPDMGEXP\n"

	tests := []struct {
		name   string
		row    string
		column string
		value  string
		want   error
	}{
		{name: "nan fatalities", row: "HAIL,NaN,1,0,K,0,", column: ColFatalities, value: "NaN", want: errNotFinite},
		{name: "inf property damage", row: "HAIL,0,1,Inf,K,0,", column: ColPropDamage, value: "Inf", want: errNotFinite},
		{name: "signed inf injuries", row: "HAIL,0,+Inf,0,K,0,", column: ColInjuries, value: "+Inf", want: errNotFinite},
		{name: "negative crop damage", row: "HAIL,0,1,0,K,-5,M", column: ColCropDamage, value: "-5", want: errNegative},
		{name: "negative injuries", row: "HAIL,0,-2,0,K,0,", column: ColInjuries, value: "-2", want: errNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", header+"WIND,0,0,1,K,0,\n"+tt.row+"\n")

			r, err := Open(path, discardLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = r.Close() })

			batch, err := r.ExtractBatch(context.Background(), 10)
			require.Error(t, err)
			assert.Nil(t, batch)

			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 3, pe.Line)
			assert.Equal(t, tt.column, pe.Column)
			assert.Equal(t, tt.value, pe.Value)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "", want: 0},
		{in: "  ", want: 0},
		{in: "0.00", want: 0},
		{in: " 25.5 ", want: 25.5},
		{in: "1e3", want: 1000},
		{in: "-0", want: 0},
		{in: "nan", wantErr: true},
		{in: "-Inf", wantErr: true},
		{in: "-0.01", wantErr: true},
		{in: "many", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNumber(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_MissingColumns(t *testing.T) {
	path := writeFile(t, "partial.csv", "EVTYPE,FATALITIES,INJURIES\nHAIL,0,0\n")

	_, err := Open(path, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROPDMG")
	assert.Contains(t, err.Error(), "CROPDMGEXP")
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", "")

	_, err := Open(path, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestOpen_HeaderOnly(t *testing.T) {
	path := writeFile(t, "header.csv", "EVTYPE,FATALITIES,INJURIES,PROPDMG,PROPDMGEXP,CROPDMG,CROPDMGEXP\n")

	r, err := Open(path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	assert.Empty(t, readAll(t, r, 10))
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.csv"), discardLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtractBatch_InvalidSize(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "storm_sample.csv"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = r.ExtractBatch(context.Background(), 0)
	require.Error(t, err)
}

func TestExtractBatch_CancelledContext(t *testing.T) {
	r, err := Open(filepath.Join("testdata", "storm_sample.csv"), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.ExtractBatch(ctx, 5)
	require.ErrorIs(t, err, context.Canceled)
}
