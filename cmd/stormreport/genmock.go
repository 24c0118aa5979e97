package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/storm-impact-report/internal/adapter/csvfile"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"
)

var mockHeader = []string{
	"STATE__", "BGN_DATE", "STATE",
	csvfile.ColEventType, csvfile.ColFatalities, csvfile.ColInjuries,
	csvfile.ColPropDamage, csvfile.ColPropDamageExp,
	csvfile.ColCropDamage, csvfile.ColCropDamageExp,
	"REFNUM",
}

// mockEventTypes is weighted toward the frequent types, with a few raw-data
// spelling variants left in on purpose.
var mockEventTypes = []string{
	"TSTM WIND", "TSTM WIND", "TSTM WIND", "HAIL", "HAIL", "HAIL",
	"TORNADO", "TORNADO", "FLASH FLOOD", "FLOOD", "EXCESSIVE HEAT",
	"HEAT", "LIGHTNING", "HURRICANE/TYPHOON", "DROUGHT", "ICE STORM",
	"THUNDERSTORM WIND", "Thunderstorm Wind", "tornado ",
}

var mockExponents = []string{"", "", "", "K", "K", "K", "M", "B", "h", "0", "5", "+", "?", "-", "9"}

var mockStates = []string{"AL", "TX", "KS", "OK", "MO", "FL", "IA", "NE"}

func (a *app) genmockCmd() *cobra.Command {
	var (
		dest string
		rows int
		seed uint64
	)

	cmd := &cobra.Command{
		Use:   "genmock",
		Short: "Write a deterministic synthetic gzip dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if rows < 0 {
				return fmt.Errorf("rows must be non-negative, got %d", rows)
			}
			if err := writeMockFile(dest, rows, seed); err != nil {
				return err
			}
			a.logger.Info("mock dataset written", "path", dest, "rows", rows, "seed", seed)
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "dest", "data/mock/StormData.csv.gz", "output path for the gzip CSV")
	cmd.Flags().IntVar(&rows, "rows", 5000, "number of data rows")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

func writeMockFile(path string, rows int, seed uint64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create mock dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mock file: %w", err)
	}

	zw := gzip.NewWriter(f)
	if err := generateMock(zw, rows, seed); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("close gzip stream: %w", err)
	}
	return f.Close()
}

// generateMock writes a CSV in the dataset's layout. The same rows and seed
// always produce the same bytes.
func generateMock(w io.Writer, rows int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x5eed))
	cw := csv.NewWriter(w)

	if err := cw.Write(mockHeader); err != nil {
		return fmt.Errorf("write mock header: %w", err)
	}

	for i := range rows {
		state := mockStates[rng.IntN(len(mockStates))]
		row := []string{
			strconv.Itoa(rng.IntN(56) + 1),
			fmt.Sprintf("%d/%d/%d 0:00:00", rng.IntN(12)+1, rng.IntN(28)+1, 1950+rng.IntN(62)),
			state,
			mockEventTypes[rng.IntN(len(mockEventTypes))],
			formatCount(rng, 40, 2),
			formatCount(rng, 15, 20),
			formatDamage(rng),
			mockExponents[rng.IntN(len(mockExponents))],
			formatDamage(rng),
			mockExponents[rng.IntN(len(mockExponents))],
			strconv.Itoa(i + 1),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write mock row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// formatCount returns 0 most of the time and otherwise a value below limit;
// oneIn controls how rare non-zero counts are.
func formatCount(rng *rand.Rand, oneIn, limit int) string {
	if rng.IntN(oneIn) != 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(rng.IntN(limit)+1), 'f', 2, 64)
}

func formatDamage(rng *rand.Rand) string {
	if rng.IntN(3) == 0 {
		return "0.00"
	}
	return strconv.FormatFloat(float64(rng.IntN(1000))/4, 'f', 2, 64)
}
