// Package timing reconstructs per-sample timestamps from a record or page
// base time, a sample index and a sample rate.
package timing

import (
	"errors"
	"fmt"
	"math"
)

// NanosPerSecond is the number of nanoseconds in one second.
const NanosPerSecond int64 = 1_000_000_000

// ErrConfig is returned when decode configuration such as a sample rate
// cannot be used.
var ErrConfig = errors.New("invalid decode configuration")

// Interval returns the integer sample spacing in nanoseconds for an integral
// rate.
func Interval(rateHz uint32) (int64, error) {
	if rateHz == 0 {
		return 0, fmt.Errorf("%w: sample rate 0 Hz", ErrConfig)
	}
	return NanosPerSecond / int64(rateHz), nil
}

// SampleTime returns baseSeconds in nanoseconds plus index whole sample
// intervals. Only integer arithmetic is used, so spacing inside a record is
// exactly uniform and every record restarts from its own base.
func SampleTime(baseSeconds int64, rateHz uint32, index uint32) (int64, error) {
	step, err := Interval(rateHz)
	if err != nil {
		return 0, err
	}
	return baseSeconds*NanosPerSecond + step*int64(index), nil
}

// IntervalHz returns the sample spacing in nanoseconds for a fractional rate,
// truncated toward zero.
func IntervalHz(rateHz float64) (int64, error) {
	if math.IsNaN(rateHz) || math.IsInf(rateHz, 0) || rateHz <= 0 {
		return 0, fmt.Errorf("%w: sample rate %v Hz", ErrConfig, rateHz)
	}
	return int64(float64(NanosPerSecond) / rateHz), nil
}

// SampleTimeHz is SampleTime for a nanosecond base and a fractional rate, as
// declared on paginated logs.
func SampleTimeHz(baseNanos int64, rateHz float64, index int) (int64, error) {
	step, err := IntervalHz(rateHz)
	if err != nil {
		return 0, err
	}
	return baseNanos + step*int64(index), nil
}
