package report

import "github.com/couchcryptid/storm-impact-report/internal/domain"

// millions converts US dollars to millions of US dollars.
const millions = 1e-6

type scale struct {
	title     string
	unit      string
	axisLabel string
	factor    float64
	logAxis   bool
}

// scaleFor returns chart scaling for a metric: health counts are plotted on a
// log10 axis, damage figures in millions of USD on a linear axis.
func scaleFor(m domain.Metric) scale {
	switch m {
	case domain.MetricFatalities:
		return scale{title: "Fatalities", axisLabel: "Fatalities (log10 scale)", factor: 1, logAxis: true}
	case domain.MetricInjuries:
		return scale{title: "Injuries", axisLabel: "Injuries (log10 scale)", factor: 1, logAxis: true}
	case domain.MetricPropertyDamage:
		return scale{title: "Property damage", axisLabel: "Property damage (millions USD)", unit: "millions USD", factor: millions}
	case domain.MetricCropDamage:
		return scale{title: "Crop damage", axisLabel: "Crop damage (millions USD)", unit: "millions USD", factor: millions}
	default:
		return scale{title: m.String(), axisLabel: m.String(), factor: 1}
	}
}
