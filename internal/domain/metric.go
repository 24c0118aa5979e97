package domain

import (
	"fmt"
	"strings"
)

// Metric names one of the four summed impact measures.
type Metric string

const (
	MetricFatalities     Metric = "fatalities"
	MetricInjuries       Metric = "injuries"
	MetricPropertyDamage Metric = "property_damage_usd"
	MetricCropDamage     Metric = "crop_damage_usd"
)

// Metrics lists every metric in report order.
var Metrics = []Metric{MetricFatalities, MetricInjuries, MetricPropertyDamage, MetricCropDamage}

// ParseMetric resolves a metric name, accepting a few short aliases
// ("property", "crop") for command-line use.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fatalities":
		return MetricFatalities, nil
	case "injuries":
		return MetricInjuries, nil
	case "property_damage_usd", "property":
		return MetricPropertyDamage, nil
	case "crop_damage_usd", "crop":
		return MetricCropDamage, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// IsEconomic reports whether the metric is a dollar amount.
func (m Metric) IsEconomic() bool {
	return m == MetricPropertyDamage || m == MetricCropDamage
}

func (m Metric) String() string { return string(m) }
