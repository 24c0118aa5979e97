package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
	"github.com/couchcryptid/storm-impact-report/internal/observability"
)

const (
	classKnown   = "known"
	classEmpty   = "empty"
	classUnknown = "unknown"
)

// exponentAudit counts exponent codes by class. An empty code and an
// unrecognized one both decode to a zero factor; counting them separately
// keeps that conflation visible in logs and metrics.
type exponentAudit struct {
	property map[string]int
	crop     map[string]int
	// unknownCodes tallies the distinct unrecognized strings.
	unknownCodes map[string]int
}

func newExponentAudit() *exponentAudit {
	return &exponentAudit{
		property:     make(map[string]int, 3),
		crop:         make(map[string]int, 3),
		unknownCodes: make(map[string]int),
	}
}

func (a *exponentAudit) observe(r domain.RawRecord) {
	a.property[a.classify(r.PropertyDamageExponentCode)]++
	a.crop[a.classify(r.CropDamageExponentCode)]++
}

func (a *exponentAudit) classify(code string) string {
	if code == "" {
		return classEmpty
	}
	if domain.ClassifyExponent(code) == domain.ExponentUnknown {
		a.unknownCodes[code]++
		return classUnknown
	}
	return classKnown
}

func (a *exponentAudit) record(m *observability.Metrics) {
	for class, n := range a.property {
		m.ExponentCodes.WithLabelValues("property", class).Add(float64(n))
	}
	for class, n := range a.crop {
		m.ExponentCodes.WithLabelValues("crop", class).Add(float64(n))
	}
}

func (a *exponentAudit) log(logger *slog.Logger) {
	if len(a.unknownCodes) == 0 {
		return
	}
	logger.Warn("unrecognized damage exponent codes decoded as zero",
		"property_unknown", a.property[classUnknown],
		"crop_unknown", a.crop[classUnknown],
		"codes", a.unknownCodes,
	)
}
