package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("thousands and billions", func(t *testing.T) {
		raw := RawRecord{
			EventType:                  "FLOOD",
			Fatalities:                 2,
			Injuries:                   1,
			PropertyDamageMagnitude:    25,
			PropertyDamageExponentCode: "K",
			CropDamageMagnitude:        1.5,
			CropDamageExponentCode:     "b",
		}

		result := Normalize(raw)

		assert.Equal(t, "FLOOD", result.EventType)
		assert.Equal(t, 2.0, result.Fatalities)
		assert.Equal(t, 1.0, result.Injuries)
		assert.Equal(t, 25000.0, result.PropertyDamageUSD)
		assert.Equal(t, 1.5e9, result.CropDamageUSD)
	})

	t.Run("unknown code contributes zero", func(t *testing.T) {
		raw := RawRecord{EventType: "HAIL", PropertyDamageMagnitude: 50, PropertyDamageExponentCode: "?"}

		result := Normalize(raw)

		assert.Equal(t, 0.0, result.PropertyDamageUSD)
		assert.Equal(t, 0.0, result.CropDamageUSD)
	})

	t.Run("does not modify input", func(t *testing.T) {
		raw := RawRecord{EventType: "WIND", PropertyDamageMagnitude: 3, PropertyDamageExponentCode: "m"}
		before := raw

		_ = Normalize(raw)

		assert.Equal(t, before, raw)
	})
}

func TestNormalize_MatchesDecodeForEveryCode(t *testing.T) {
	codes := []string{"", "?", "-", "+", "0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
		"h", "H", "k", "K", "m", "M", "b", "B", "x"}

	for _, code := range codes {
		raw := RawRecord{
			PropertyDamageMagnitude:    12.5,
			PropertyDamageExponentCode: code,
			CropDamageMagnitude:        4,
			CropDamageExponentCode:     code,
		}
		result := Normalize(raw)
		assert.Equal(t, 12.5*DecodeExponent(code), result.PropertyDamageUSD, "property code %q", code)
		assert.Equal(t, 4*DecodeExponent(code), result.CropDamageUSD, "crop code %q", code)
	}
}

func TestNormalizeAll(t *testing.T) {
	raws := []RawRecord{
		{EventType: "A", PropertyDamageMagnitude: 1, PropertyDamageExponentCode: "h"},
		{EventType: "B", CropDamageMagnitude: 2, CropDamageExponentCode: "k"},
	}

	result := NormalizeAll(raws)

	assert.Len(t, result, 2)
	assert.Equal(t, 100.0, result[0].PropertyDamageUSD)
	assert.Equal(t, 2000.0, result[1].CropDamageUSD)
	assert.Empty(t, NormalizeAll(nil))
}
