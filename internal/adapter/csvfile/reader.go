package csvfile

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/klauspost/compress/gzip"
)

// Source column names in the NOAA Storm Events export.
const (
	ColEventType     = "EVTYPE"
	ColFatalities    = "FATALITIES"
	ColInjuries      = "INJURIES"
	ColPropDamage    = "PROPDMG"
	ColPropDamageExp = "PROPDMGEXP"
	ColCropDamage    = "CROPDMG"
	ColCropDamageExp = "CROPDMGEXP"
)

const (
	compressionNone  = "none"
	compressionGzip  = "gzip"
	compressionBzip2 = "bzip2"

	utf8BOM = "\ufeff"
)

var (
	errNotFinite = errors.New("value is not finite")
	errNegative  = errors.New("value is negative")
)

// ParseError reports a numeric cell that could not be interpreted.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %s: invalid number %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// columns holds the header index of each projected field.
type columns struct {
	eventType, fatalities, injuries int
	propDmg, propExp, cropDmg, cropExp int
}

// Reader streams RawRecords out of a (possibly compressed) storm data CSV.
// It implements pipeline.BatchExtractor.
type Reader struct {
	path        string
	file        *os.File
	gz          *gzip.Reader
	csv         *csv.Reader
	cols        columns
	compression string
	rows        int
	logger      *slog.Logger
}

// Open opens path, detects bzip2 or gzip compression from the file's magic
// bytes, and reads the header row. Missing required columns are an error.
func Open(path string, logger *slog.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	r := &Reader{path: path, file: f, logger: logger}
	src, err := r.decompress(bufio.NewReaderSize(f, 1<<16))
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	r.csv = csv.NewReader(src)
	r.csv.LazyQuotes = true
	r.csv.ReuseRecord = true

	header, err := r.csv.Read()
	if err != nil {
		_ = r.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: dataset %s is empty", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := projectColumns(header)
	if err != nil {
		_ = r.Close()
		return nil, err
	}
	r.cols = cols

	logger.Info("dataset opened", "path", path, "compression", r.compression, "columns", len(header))
	return r, nil
}

func (r *Reader) decompress(br *bufio.Reader) (io.Reader, error) {
	magic, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("sniff compression: %w", err)
	}

	switch {
	case bytes.HasPrefix(magic, []byte("BZh")):
		r.compression = compressionBzip2
		return bzip2.NewReader(br), nil
	case bytes.HasPrefix(magic, []byte{0x1f, 0x8b}):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		r.gz = gz
		r.compression = compressionGzip
		return gz, nil
	default:
		r.compression = compressionNone
		return br, nil
	}
}

// projectColumns locates the required columns by case-insensitive name.
func projectColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		key := strings.ToUpper(strings.TrimSpace(name))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	lookup := func(name string) int {
		i, ok := index[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}

	cols := columns{
		eventType:  lookup(ColEventType),
		fatalities: lookup(ColFatalities),
		injuries:   lookup(ColInjuries),
		propDmg:    lookup(ColPropDamage),
		propExp:    lookup(ColPropDamageExp),
		cropDmg:    lookup(ColCropDamage),
		cropExp:    lookup(ColCropDamageExp),
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("dataset header missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// ExtractBatch reads up to batchSize records. It returns io.EOF, with no
// records, once the file is exhausted.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	batch := make([]domain.RawRecord, 0, batchSize)
	for len(batch) < batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			if len(batch) == 0 {
				return nil, io.EOF
			}
			return batch, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}

		rec, err := r.project(row)
		if err != nil {
			return nil, err
		}
		batch = append(batch, rec)
		r.rows++
	}
	return batch, nil
}

// Rows returns how many data rows have been read so far.
func (r *Reader) Rows() int { return r.rows }

func (r *Reader) project(row []string) (domain.RawRecord, error) {
	rec := domain.RawRecord{
		EventType:                  row[r.cols.eventType],
		PropertyDamageExponentCode: row[r.cols.propExp],
		CropDamageExponentCode:     row[r.cols.cropExp],
	}

	fields := []struct {
		dst  *float64
		idx  int
		name string
	}{
		{&rec.Fatalities, r.cols.fatalities, ColFatalities},
		{&rec.Injuries, r.cols.injuries, ColInjuries},
		{&rec.PropertyDamageMagnitude, r.cols.propDmg, ColPropDamage},
		{&rec.CropDamageMagnitude, r.cols.cropDmg, ColCropDamage},
	}
	for _, f := range fields {
		v, err := parseNumber(row[f.idx])
		if err != nil {
			line, _ := r.csv.FieldPos(f.idx)
			return domain.RawRecord{}, &ParseError{Line: line, Column: f.name, Value: row[f.idx], Err: err}
		}
		*f.dst = v
	}
	return rec, nil
}

// parseNumber treats an empty cell as 0 (absent). Counts and damage
// magnitudes must be finite and non-negative; anything else is an error.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}

// Close releases the decompressor and the underlying file.
func (r *Reader) Close() error {
	var errs []error
	if r.gz != nil {
		errs = append(errs, r.gz.Close())
	}
	if r.file != nil {
		errs = append(errs, r.file.Close())
	}
	return errors.Join(errs...)
}
