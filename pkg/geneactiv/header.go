package geneactiv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ssargent/actfast/pkg/timing"
)

// Calibration line prefixes
const (
	idXGain   = "x gain:"
	idXOffset = "x offset:"
	idYGain   = "y gain:"
	idYOffset = "y offset:"
	idZGain   = "z gain:"
	idZOffset = "z offset:"
	idVolts   = "Volts:"
	idLux     = "Lux:"
)

// Calibration converts raw counts to physical units
type Calibration struct {
	XGain, XOffset float64
	YGain, YOffset float64
	ZGain, ZOffset float64
	Volts, Lux     float64
}

// DefaultCalibration is used for values the header does not declare
func DefaultCalibration() Calibration {
	return Calibration{Volts: 1}
}

// Validate rejects calibrations that would divide by zero
func (c Calibration) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"x gain", c.XGain},
		{"y gain", c.YGain},
		{"z gain", c.ZGain},
		{"volts", c.Volts},
	}
	for _, check := range checks {
		if check.value == 0 {
			return fmt.Errorf("%w: calibration %s is 0", timing.ErrConfig, check.name)
		}
	}
	return nil
}

// Axis applies (raw - offset) / gain
func Axis(raw int64, gain, offset float64) float32 {
	return float32((float64(raw) - offset) / gain)
}

// Light applies raw * lux / volts
func (c Calibration) Light(raw int64) float32 {
	return float32(float64(raw) * c.Lux / c.Volts)
}

// apply updates the calibration from one header line
func (c *Calibration) apply(line string) error {
	fields := []struct {
		prefix string
		dst    *float64
	}{
		{idXGain, &c.XGain},
		{idXOffset, &c.XOffset},
		{idYGain, &c.YGain},
		{idYOffset, &c.YOffset},
		{idZGain, &c.ZGain},
		{idZOffset, &c.ZOffset},
		{idVolts, &c.Volts},
		{idLux, &c.Lux},
	}
	for _, f := range fields {
		if !strings.HasPrefix(line, f.prefix) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(line[len(f.prefix):]), 64)
		if err != nil {
			return fmt.Errorf("parse %q: %w", line, err)
		}
		*f.dst = v
		return nil
	}
	return nil
}

// parseValue returns an int64, a float64 or the trimmed string
func parseValue(raw string) any {
	s := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// headerSection tracks the section heading that header metadata belongs to
type headerSection struct {
	name string
}

// line returns the metadata entry for a header line, if it is one. A line
// without a colon starts a new section.
func (h *headerSection) line(line string) (category, key string, value any, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", nil, false
	}
	k, v, found := strings.Cut(line, ":")
	if !found {
		h.name = line
		return "", "", nil, false
	}
	category = h.name
	if category == "" {
		category = "Header"
	}
	return category, strings.TrimSpace(k), parseValue(v), true
}
