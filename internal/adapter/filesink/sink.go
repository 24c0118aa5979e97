package filesink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/storm-impact-report/internal/config"
	"github.com/couchcryptid/storm-impact-report/internal/report"
)

// Artifact file names written under the output directory.
const (
	TextFile = "report.txt"
	CSVFile  = "rankings.csv"
	JSONFile = "report.json"
)

// ChartFile returns the HTML chart file name for a question.
func ChartFile(q report.Question) string {
	return string(q) + ".html"
}

// Sink writes report artifacts to a directory.
// It implements pipeline.ReportSink.
type Sink struct {
	dir     string
	formats []string
	logger  *slog.Logger
}

// New creates a Sink writing the given formats into dir.
func New(dir string, formats []string, logger *slog.Logger) *Sink {
	return &Sink{dir: dir, formats: formats, logger: logger}
}

func (s *Sink) Name() string { return "files" }

// Publish writes one file per enabled format. Files are replaced atomically.
func (s *Sink) Publish(_ context.Context, rep report.Report) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, format := range s.formats {
		switch format {
		case config.FormatText:
			if err := s.write(TextFile, func(w io.Writer) error { return report.WriteText(w, rep) }); err != nil {
				return err
			}
		case config.FormatCSV:
			if err := s.write(CSVFile, func(w io.Writer) error { return report.WriteCSV(w, rep) }); err != nil {
				return err
			}
		case config.FormatJSON:
			if err := s.write(JSONFile, func(w io.Writer) error { return report.WriteJSON(w, rep) }); err != nil {
				return err
			}
		case config.FormatHTML:
			for _, sec := range rep.Sections {
				if err := s.write(ChartFile(sec.Question), func(w io.Writer) error { return report.WriteChart(w, sec) }); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unsupported report format %q", format)
		}
	}
	return nil
}

func (s *Sink) write(name string, render func(io.Writer) error) error {
	path := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after successful rename

	if err := render(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move %s into place: %w", name, err)
	}

	s.logger.Debug("report artifact written", "path", path)
	return nil
}
