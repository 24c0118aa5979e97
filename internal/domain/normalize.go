package domain

// Normalize converts a raw record's damage coefficients to US dollars.
// Fatalities and injuries pass through unchanged.
func Normalize(r RawRecord) NormalizedRecord {
	return NormalizedRecord{
		EventType:         r.EventType,
		Fatalities:        r.Fatalities,
		Injuries:          r.Injuries,
		PropertyDamageUSD: r.PropertyDamageMagnitude * DecodeExponent(r.PropertyDamageExponentCode),
		CropDamageUSD:     r.CropDamageMagnitude * DecodeExponent(r.CropDamageExponentCode),
	}
}

// NormalizeAll normalizes a slice of raw records into a new slice.
func NormalizeAll(records []RawRecord) []NormalizedRecord {
	out := make([]NormalizedRecord, len(records))
	for i, r := range records {
		out[i] = Normalize(r)
	}
	return out
}
