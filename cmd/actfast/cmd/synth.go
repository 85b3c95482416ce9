/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ssargent/actfast/pkg/actigraph"
	"github.com/ssargent/actfast/pkg/geneactiv"
)

// samplesPerPage matches what GENEActiv devices write per page
const samplesPerPage = 300

// synthCmd represents the synth command
var synthCmd = &cobra.Command{
	Use:   "synth <output>",
	Short: "Write a synthetic recording",
	Long: `Write a synthetic GT3X archive or GENEActiv BIN file holding a slow sine
wave on x and y and 1 g on z. Useful for testing pipelines without device data.

Examples:
  actfast synth test.gt3x --rate 100 --seconds 60 --lux
  actfast synth test.bin --device geneactiv --rate 50 --seconds 30
  actfast decode test.bin --hex-pages

GENEActiv sample lines are hex encoded unless --hex-pages=false is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		device, _ := cmd.Flags().GetString("device")
		rate, _ := cmd.Flags().GetUint32("rate")
		seconds, _ := cmd.Flags().GetInt("seconds")
		start, _ := cmd.Flags().GetInt64("start")
		serial, _ := cmd.Flags().GetString("serial")
		lux, _ := cmd.Flags().GetBool("lux")
		hexPages, _ := cmd.Flags().GetBool("hex-pages")

		if rate == 0 || seconds <= 0 {
			return fmt.Errorf("rate and seconds must be positive")
		}

		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, f.Close())
		}()

		switch device {
		case "gt3x":
			err = actigraph.Synthesize(f, actigraph.SynthOptions{
				Start:      uint32(start),
				SampleRate: rate,
				Seconds:    seconds,
				Lux:        lux,
				Info: map[string]string{
					"Serial Number": serial,
					"Sample Rate":   fmt.Sprint(rate),
				},
			})
		case "geneactiv":
			err = synthGeneActiv(f, serial, time.Unix(start, 0), float64(rate), seconds, hexPages)
		default:
			return fmt.Errorf("unknown device %q (gt3x or geneactiv)", device)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d s at %d Hz to %s\n", seconds, rate, args[0])
		return nil
	},
}

func synthGeneActiv(w io.Writer, serial string, start time.Time, rate float64, seconds int, hexPages bool) error {
	const gain = 100
	cal := geneactiv.Calibration{XGain: gain, YGain: gain, ZGain: gain, Volts: 300, Lux: 800}

	total := int(rate) * seconds
	var pages []geneactiv.Page
	for first := 0; first < total; first += samplesPerPage {
		n := min(samplesPerPage, total-first)
		samples := make([]geneactiv.RawSample, n)
		for i := range samples {
			phase := 2 * math.Pi * float64(first+i) / (rate * 10)
			samples[i] = geneactiv.RawSample{
				X:     int16(math.Round(math.Sin(phase) * gain)),
				Y:     int16(math.Round(math.Cos(phase) * gain)),
				Z:     gain,
				Light: int16(first/samplesPerPage) % 512,
			}
		}
		pages = append(pages, geneactiv.Page{
			Time:           start.Add(time.Duration(float64(first) / rate * float64(time.Second))),
			Frequency:      rate,
			Temperature:    25,
			BatteryVoltage: 4.1,
			Samples:        samples,
		})
	}
	return geneactiv.WriteFile(w, serial, cal, pages, hexPages)
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().String("device", "gt3x", "Device format (gt3x or geneactiv)")
	synthCmd.Flags().Uint32("rate", 30, "Sample rate in Hz")
	synthCmd.Flags().Int("seconds", 10, "Recording length in seconds")
	synthCmd.Flags().Int64("start", 1700000000, "Start time as Unix seconds")
	synthCmd.Flags().String("serial", "SYNTH0000001", "Device serial number")
	synthCmd.Flags().Bool("lux", false, "Add lux records (gt3x)")
	synthCmd.Flags().Bool("hex-pages", true, "Hex encode sample lines (geneactiv)")
}
