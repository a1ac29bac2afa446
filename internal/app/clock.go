package app

import (
	"fmt"
	"time"
)

// DefaultTickInterval is the cadence at which a running session samples its clock.
const DefaultTickInterval = time.Second

// Elapsed returns the time since start; a start in the future counts as zero.
func Elapsed(now, start time.Time) time.Duration {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// Remaining returns max(0, duration-elapsed).
func Remaining(duration, elapsed time.Duration) time.Duration {
	if left := duration - elapsed; left > 0 {
		return left
	}
	return 0
}

// FormatClock renders a remaining duration as mm:ss, rounding down to the second.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
