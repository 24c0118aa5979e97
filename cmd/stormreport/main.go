// Command stormreport builds the storm event impact report: which event types
// are most harmful to population health and which have the greatest economic
// consequences, from the NOAA Storm Events dataset.
//
// Usage:
//
//	stormreport                       # download if absent, aggregate, write artifacts
//	stormreport fetch                 # download the dataset only
//	stormreport validate --input f    # check aggregation and ranking invariants
//	stormreport genmock --rows 5000   # write a synthetic gzip dataset
//
// Settings come from the environment (see internal/config); --input, --out,
// and --top override INPUT_PATH, OUTPUT_DIR, and TOP_N.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
