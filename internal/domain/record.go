package domain

// RawRecord is one storm event observation as projected from the source CSV.
type RawRecord struct {
	EventType                  string  `json:"event_type"`
	Fatalities                 float64 `json:"fatalities"`
	Injuries                   float64 `json:"injuries"`
	PropertyDamageMagnitude    float64 `json:"property_damage_magnitude"`
	PropertyDamageExponentCode string  `json:"property_damage_exponent_code"`
	CropDamageMagnitude        float64 `json:"crop_damage_magnitude"`
	CropDamageExponentCode     string  `json:"crop_damage_exponent_code"`
}

// NormalizedRecord carries damage figures converted to US dollars.
type NormalizedRecord struct {
	EventType         string  `json:"event_type"`
	Fatalities        float64 `json:"fatalities"`
	Injuries          float64 `json:"injuries"`
	PropertyDamageUSD float64 `json:"property_damage_usd"`
	CropDamageUSD     float64 `json:"crop_damage_usd"`
}

// AggregateRow holds the summed impact of every record sharing an event type.
type AggregateRow struct {
	EventType              string  `json:"event_type"`
	TotalFatalities        float64 `json:"total_fatalities"`
	TotalInjuries          float64 `json:"total_injuries"`
	TotalPropertyDamageUSD float64 `json:"total_property_damage_usd"`
	TotalCropDamageUSD     float64 `json:"total_crop_damage_usd"`
}

// Value returns the row's total for the given metric. Unknown metrics yield 0.
func (r AggregateRow) Value(m Metric) float64 {
	switch m {
	case MetricFatalities:
		return r.TotalFatalities
	case MetricInjuries:
		return r.TotalInjuries
	case MetricPropertyDamage:
		return r.TotalPropertyDamageUSD
	case MetricCropDamage:
		return r.TotalCropDamageUSD
	default:
		return 0
	}
}

func (r *AggregateRow) add(n NormalizedRecord) {
	r.TotalFatalities += n.Fatalities
	r.TotalInjuries += n.Injuries
	r.TotalPropertyDamageUSD += n.PropertyDamageUSD
	r.TotalCropDamageUSD += n.CropDamageUSD
}

func (r *AggregateRow) merge(o AggregateRow) {
	r.TotalFatalities += o.TotalFatalities
	r.TotalInjuries += o.TotalInjuries
	r.TotalPropertyDamageUSD += o.TotalPropertyDamageUSD
	r.TotalCropDamageUSD += o.TotalCropDamageUSD
}
