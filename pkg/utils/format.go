package utils

import (
	"strconv"
	"time"

	"github.com/sessionintel/session-intel/pkg/types"
)

// FormatScore renders a struggle score the shortest way that round-trips,
// so 12.0 prints as "12" and 3.25 stays "3.25". Report headers and stats
// tables share this rendering.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}

// FormatMinutes renders a duration in minutes with one decimal place.
func FormatMinutes(minutes float64) string {
	return strconv.FormatFloat(minutes, 'f', 1, 64) + " min"
}

// FormatTime renders a timestamp as UTC RFC 3339. Session timestamps and
// skill creation times compare by string, so everything goes through here.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// CalculateTotalSize sums the size of all files
func CalculateTotalSize(files []types.SessionFile) int64 {
	var total int64
	for _, f := range files {
		total += f.SizeBytes
	}
	return total
}
