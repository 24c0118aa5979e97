package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// WriteText renders every panel as an aligned plain-text table.
func WriteText(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Storm impact report\n\ngenerated:   %s\nrecords:     %d\nevent types: %d\ntop:         %d\n",
		r.GeneratedAt.Format(time.RFC3339), r.Records, r.EventTypes, r.TopN); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, sec := range r.Sections {
		if _, err := fmt.Fprintf(w, "\n## %s\n", sec.Title); err != nil {
			return fmt.Errorf("write section %s: %w", sec.Question, err)
		}
		for _, p := range sec.Panels {
			if err := writePanelText(w, p); err != nil {
				return fmt.Errorf("write panel %s: %w", p.Metric, err)
			}
		}
	}
	return nil
}

func writePanelText(w io.Writer, p Panel) error {
	if _, err := fmt.Fprintf(w, "\n### %s\n\n", p.Title); err != nil {
		return err
	}
	if len(p.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(no events)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RANK\tEVENT TYPE\t%s\n", valueHeader(p))
	for i, row := range p.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Rank, row.EventType, formatScaled(p.Series.Values[i], p.Metric.IsEconomic()))
	}
	return tw.Flush()
}

// valueHeader names the value column after the panel and the unit its
// values are printed in. Health panels print raw counts.
func valueHeader(p Panel) string {
	if p.Unit == "" {
		return strings.ToUpper(p.Title)
	}
	return strings.ToUpper(p.Title + " (" + p.Unit + ")")
}

// formatScaled prints counts as integers and millions of USD with two decimals.
func formatScaled(v float64, economic bool) string {
	if economic {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

var csvHeader = []string{"question", "metric", "rank", "event_type", "value"}

// WriteCSV writes one row per ranked entry. Values are unscaled: counts for
// health metrics and US dollars for damage metrics.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, sec := range r.Sections {
		for _, p := range sec.Panels {
			for _, row := range p.Rows {
				rec := []string{
					string(sec.Question),
					p.Metric.String(),
					strconv.Itoa(row.Rank),
					row.EventType,
					strconv.FormatFloat(row.Value, 'f', -1, 64),
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("write csv row: %w", err)
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the report as an indented JSON document.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
