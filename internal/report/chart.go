package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteChart renders a section as an HTML page with one bar chart per panel,
// stacked vertically. Bars follow ranked order, not alphabetical order.
func WriteChart(w io.Writer, sec Section) error {
	page := components.NewPage()
	page.PageTitle = sec.Title
	for _, p := range sec.Panels {
		page.AddCharts(panelChart(sec.Title, p))
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render %s chart: %w", sec.Question, err)
	}
	return nil
}

func panelChart(sectionTitle string, p Panel) *charts.Bar {
	yAxis := opts.YAxis{Name: p.Series.AxisLabel, Type: "value"}
	if p.Series.LogAxis {
		yAxis.Type = "log"
	}

	data, omitted := barData(p.Series)
	subtitle := sectionTitle
	if omitted > 0 {
		subtitle = fmt.Sprintf("%s (%d zero values not drawn on log scale)", sectionTitle, omitted)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1000px", Height: "450px"}),
		charts.WithTitleOpts(opts.Title{Title: p.Title, Subtitle: subtitle}),
		charts.WithYAxisOpts(yAxis),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Event type",
			AxisLabel: &opts.AxisLabel{Rotate: 30, Interval: "0"},
		}),
	)

	bar.SetXAxis(p.Series.Labels).AddSeries(p.Title, data)
	return bar
}

// missingValue is the ECharts placeholder for a bar with no data.
const missingValue = "-"

// barData converts a series to bars. Log axes cannot place values <= 0, so
// those bars are left empty and counted; the label stays on the axis.
func barData(s Series) ([]opts.BarData, int) {
	data := make([]opts.BarData, len(s.Values))
	omitted := 0
	for i, v := range s.Values {
		if s.LogAxis && v <= 0 {
			data[i] = opts.BarData{Name: s.Labels[i], Value: missingValue}
			omitted++
			continue
		}
		data[i] = opts.BarData{Name: s.Labels[i], Value: v}
	}
	return data, omitted
}
