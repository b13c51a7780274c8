package availability

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeToMinutes converts "HH:MM" to minutes since midnight. Missing or
// unparseable parts count as zero and no range check is made.
func TimeToMinutes(s string) int {
	hh, mm, _ := strings.Cut(s, ":")
	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil {
		h = 0
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil {
		m = 0
	}
	return h*60 + m
}

// MinutesToTime renders minutes since midnight as "HH:MM". Values past the end
// of the day keep counting hours ("24:30") and negative values get a sign.
func MinutesToTime(m int) string {
	if m < 0 {
		return "-" + MinutesToTime(-m)
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// IsOverlapping reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Intervals that only touch do not overlap.
func IsOverlapping(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}
