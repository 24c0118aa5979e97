package domain

import "strings"

// ExponentCode is the decoded class of a raw damage exponent string.
type ExponentCode int

const (
	// ExponentUnknown covers "", "?", "-", "9" and anything unrecognized.
	ExponentUnknown ExponentCode = iota
	ExponentOnes
	ExponentTens
	ExponentHundreds
	ExponentThousands
	ExponentMillions
	ExponentBillions
)

var exponentFactors = [...]float64{
	ExponentUnknown:   0,
	ExponentOnes:      1,
	ExponentTens:      10,
	ExponentHundreds:  100,
	ExponentThousands: 1e3,
	ExponentMillions:  1e6,
	ExponentBillions:  1e9,
}

// ClassifyExponent maps a raw exponent string to its class. Matching is
// case-insensitive and exact: surrounding whitespace is not trimmed.
func ClassifyExponent(code string) ExponentCode {
	switch strings.ToLower(code) {
	case "+":
		return ExponentOnes
	case "0", "1", "2", "3", "4", "5", "6", "7", "8":
		return ExponentTens
	case "h":
		return ExponentHundreds
	case "k":
		return ExponentThousands
	case "m":
		return ExponentMillions
	case "b":
		return ExponentBillions
	default:
		return ExponentUnknown
	}
}

// Factor returns the multiplier for the class.
func (c ExponentCode) Factor() float64 {
	if c < 0 || int(c) >= len(exponentFactors) {
		return 0
	}
	return exponentFactors[c]
}

func (c ExponentCode) String() string {
	switch c {
	case ExponentOnes:
		return "ones"
	case ExponentTens:
		return "tens"
	case ExponentHundreds:
		return "hundreds"
	case ExponentThousands:
		return "thousands"
	case ExponentMillions:
		return "millions"
	case ExponentBillions:
		return "billions"
	default:
		return "unknown"
	}
}

// DecodeExponent returns the multiplicative factor for a raw exponent code.
// It never fails: unrecognized input decodes to 0.
func DecodeExponent(code string) float64 {
	return ClassifyExponent(code).Factor()
}
