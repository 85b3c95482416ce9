package geneactiv

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/ssargent/actfast/pkg/bitreader"
)

// Page is one page of samples to write
type Page struct {
	Time           time.Time
	Frequency      float64
	Temperature    float64
	BatteryVoltage float64
	Samples        []RawSample
}

// PackSamples is the inverse of UnpackSamples
func PackSamples(samples []RawSample) ([]byte, error) {
	w := bitreader.NewWriter()
	for i, s := range samples {
		for _, v := range []int16{s.X, s.Y, s.Z} {
			if err := w.WriteSigned(int64(v), axisBits); err != nil {
				return nil, errors.Wrapf(err, "sample %d", i)
			}
		}
		if err := w.WriteSigned(int64(s.Light), lightBits); err != nil {
			return nil, errors.Wrapf(err, "sample %d", i)
		}
		if err := w.WriteBool(s.Button); err != nil {
			return nil, err
		}
		if err := w.WriteUnsigned(0, reservedBits); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// FormatPageTime is the inverse of ParsePageTime
func FormatPageTime(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s:%03d", t.Format(pageTimeLayout), t.Nanosecond()/int(time.Millisecond))
}

func headerLines(serial string, cal Calibration, pages int) []string {
	lines := []string{
		"Device Identity",
		"Device Unique Serial Code:" + serial,
		"Device Type:GENEActiv",
		"Device Model:1.1",
		"Device Firmware:Ver06.17 15June23",
		"Calibration Date:2023-01-01 00:00:00:000",
		"",
		"Device Capabilities",
		"Accelerometer Range:-8 to 8",
		"Accelerometer Resolution:0.0039",
		"Accelerometer Units:g",
		"Light Meter Range:0 to 5000",
		"Light Meter Resolution:5",
		"Light Meter Units:lux",
		"Temperature Sensor Range:0 to 60",
		"Temperature Sensor Resolution:0.25",
		"Temperature Sensor Units:deg. C",
		"",
		"Configuration Info",
		"Measurement Frequency:100 Hz",
		"Measurement Period:168 Hours",
		"Study Centre:",
		"Study Code:",
		"Investigator ID:",
		"Exercise Type:",
		"",
		"Trial Info",
		"Time Zone:GMT +00:00",
		"",
		"Subject Info",
		"Subject Code:",
		"Handedness Code:right",
		"",
		"Calibration Data",
		fmt.Sprintf("%s%g", idXGain, cal.XGain),
		fmt.Sprintf("%s%g", idXOffset, cal.XOffset),
		fmt.Sprintf("%s%g", idYGain, cal.YGain),
		fmt.Sprintf("%s%g", idYOffset, cal.YOffset),
		fmt.Sprintf("%s%g", idZGain, cal.ZGain),
		fmt.Sprintf("%s%g", idZOffset, cal.ZOffset),
		fmt.Sprintf("%s%g", idVolts, cal.Volts),
		fmt.Sprintf("%s%g", idLux, cal.Lux),
		"",
		"Memory Status",
		fmt.Sprintf("Number of Pages:%d", pages),
	}
	for len(lines) < HeaderLines {
		lines = append(lines, "")
	}
	return lines
}

// WriteFile writes a GENEActiv file. Unless hexPages is set, sample lines
// are written as raw bytes and must not contain a newline byte.
func WriteFile(w io.Writer, serial string, cal Calibration, pages []Page, hexPages bool) error {
	bw := bufio.NewWriter(w)
	for _, line := range headerLines(serial, cal, len(pages)) {
		if _, err := fmt.Fprintf(bw, "%s\r\n", line); err != nil {
			return err
		}
	}

	for i, p := range pages {
		data, err := PackSamples(p.Samples)
		if err != nil {
			return errors.Wrapf(err, "page %d", i)
		}
		fields := []string{
			pageTypeRecorded,
			"Device Unique Serial Code:" + serial,
			fmt.Sprintf("Sequence Number:%d", i),
			idPageTime + FormatPageTime(p.Time),
			"Unassigned:",
			fmt.Sprintf("%s%g", idPageTemp, p.Temperature),
			fmt.Sprintf("%s%g", idPageBattery, p.BatteryVoltage),
			"Device Status:Recording",
			fmt.Sprintf("%s%g", idPageFrequency, p.Frequency),
		}
		for _, f := range fields {
			if _, err := fmt.Fprintf(bw, "%s\r\n", f); err != nil {
				return err
			}
		}

		if hexPages {
			data = []byte(hex.EncodeToString(data))
		} else if bytes.IndexByte(data, '\n') >= 0 {
			return errors.Errorf("page %d: raw sample data contains a newline byte", i)
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		if _, err := bw.WriteString("\r\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
