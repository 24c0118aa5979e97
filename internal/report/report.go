// Package report turns ranked aggregates into presentation-ready tables and
// chart series. It holds no business logic beyond ranking lookups, unit
// scaling, and formatting, so it can be replaced without touching the
// aggregation core.
package report

import (
	"time"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
)

// Question identifies one of the two report questions.
type Question string

const (
	QuestionHealth   Question = "health"
	QuestionEconomic Question = "economic"
)

// Row is one line of a ranked table.
type Row struct {
	Rank      int     `json:"rank"`
	EventType string  `json:"event_type"`
	Value     float64 `json:"value"`
}

// Series is a chart-ready view of a ranked table: labels in ranked order and
// values already multiplied by the panel's scale factor.
type Series struct {
	Labels    []string  `json:"labels"`
	Values    []float64 `json:"values"`
	LogAxis   bool      `json:"log_axis"`
	AxisLabel string    `json:"axis_label"`
}

// Panel is the ranked table and chart series for one metric.
type Panel struct {
	Metric domain.Metric `json:"metric"`
	Title  string        `json:"title"`
	Unit   string        `json:"unit,omitempty"`
	Rows   []Row         `json:"rows"`
	Series Series        `json:"series"`
}

// Section pairs the two panels that answer one question.
type Section struct {
	Question Question `json:"question"`
	Title    string   `json:"title"`
	Panels   []Panel  `json:"panels"`
}

// Report is the complete output of one run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	TopN        int       `json:"top_n"`
	Records     int       `json:"records"`
	EventTypes  int       `json:"event_types"`
	Sections    []Section `json:"sections"`
}

// Section returns the section for a question.
func (r Report) Section(q Question) (Section, bool) {
	for _, s := range r.Sections {
		if s.Question == q {
			return s, true
		}
	}
	return Section{}, false
}

// Options controls report construction.
type Options struct {
	TopN    int
	Records int
}

type sectionLayout struct {
	question Question
	title    string
	metrics  []domain.Metric
}

var sectionLayouts = []sectionLayout{
	{
		question: QuestionHealth,
		title:    "Event types most harmful to population health",
		metrics:  []domain.Metric{domain.MetricFatalities, domain.MetricInjuries},
	},
	{
		question: QuestionEconomic,
		title:    "Event types with the greatest economic consequences",
		metrics:  []domain.Metric{domain.MetricPropertyDamage, domain.MetricCropDamage},
	},
}

// Build ranks the table by each report metric and assembles the sections.
func Build(table *domain.Table, o Options) Report {
	rep := Report{
		GeneratedAt: clock.Now().UTC(),
		TopN:        o.TopN,
		Records:     o.Records,
		EventTypes:  table.Len(),
		Sections:    make([]Section, 0, len(sectionLayouts)),
	}

	for _, layout := range sectionLayouts {
		sec := Section{
			Question: layout.question,
			Title:    layout.title,
			Panels:   make([]Panel, 0, len(layout.metrics)),
		}
		for _, m := range layout.metrics {
			sec.Panels = append(sec.Panels, BuildPanel(domain.Rank(table, m, o.TopN)))
		}
		rep.Sections = append(rep.Sections, sec)
	}
	return rep
}

// BuildPanel formats a ranked table as rows plus a scaled chart series.
func BuildPanel(ranked domain.RankedTable) Panel {
	sc := scaleFor(ranked.Metric)
	p := Panel{
		Metric: ranked.Metric,
		Title:  sc.title,
		Unit:   sc.unit,
		Rows:   make([]Row, len(ranked.Rows)),
		Series: Series{
			Labels:    make([]string, len(ranked.Rows)),
			Values:    make([]float64, len(ranked.Rows)),
			LogAxis:   sc.logAxis,
			AxisLabel: sc.axisLabel,
		},
	}
	for i, r := range ranked.Rows {
		v := r.Value(ranked.Metric)
		p.Rows[i] = Row{Rank: i + 1, EventType: r.EventType, Value: v}
		p.Series.Labels[i] = r.EventType
		p.Series.Values[i] = v * sc.factor
	}
	return p
}
