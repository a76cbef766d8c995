package subtitles

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as an ASS timestamp (H:MM:SS.cc). Hours are not
// padded or bounded; centiseconds are truncated, never rounded. Negative
// input is treated as zero.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	hours := int64(seconds / 3600)
	minutes := int64(math.Mod(seconds, 3600) / 60)
	secs := int64(math.Mod(seconds, 60))
	cs := int64(math.Mod(seconds, 1) * 100)
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, cs)
}

// centiseconds converts a duration in seconds to whole centiseconds, clamped at zero.
func centiseconds(duration float64) int64 {
	cs := math.Floor(duration * 100)
	if cs <= 0 || math.IsNaN(cs) {
		return 0
	}
	return int64(cs)
}
