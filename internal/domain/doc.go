// Package domain models NOAA Storm Events records and the pure transforms
// that turn them into per-event-type impact rankings.
//
// # Data Source
//
// Records come from the NOAA Storm Events Database export distributed as a
// bzip2-compressed CSV (StormData.csv.bz2, 1950 through November 2011). Each
// row is one event observation. Only seven of the 37 columns matter here:
//
//	EVTYPE      free-text event type, e.g. "TORNADO", "TSTM WIND"
//	FATALITIES  deaths directly attributed to the event
//	INJURIES    injuries directly attributed to the event
//	PROPDMG     property damage coefficient
//	PROPDMGEXP  property damage exponent code
//	CROPDMG     crop damage coefficient
//	CROPDMGEXP  crop damage exponent code
//
// # Exponent Codes
//
// Damage is reported as a coefficient plus a one-character order-of-magnitude
// code. Letter codes are case-insensitive:
//
//	"+"       x1
//	"0"-"8"   x10
//	"h"       x100
//	"k"       x1,000
//	"m"       x1,000,000
//	"b"       x1,000,000,000
//	other     x0   ("", "?", "-", "9", anything unrecognized)
//
// The x0 fallback means "no damage reported" and "damage reported with a
// missing or invalid code" are indistinguishable after decoding. "9" is left
// unmapped while "0"-"8" map to x10. Both quirks are kept as-is so rankings
// stay comparable with earlier analyses of this dataset; see [ClassifyExponent]
// to tell the cases apart before decoding.
//
// # Event Types
//
// EVTYPE is not canonicalized. "TSTM WIND" and "THUNDERSTORM WIND", or
// "FLOOD" and " FLOOD", are separate groups. This is a known data-quality
// limitation of the source and is preserved literally because merging
// spelling variants would change the reported rankings.
//
// # Pipeline
//
//	RawRecord -> [Normalize] -> NormalizedRecord -> [Accumulator] -> Table -> [Rank] -> RankedTable
//
// Every stage returns a new value; nothing is mutated in place.
package domain
