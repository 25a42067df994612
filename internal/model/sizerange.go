package model

import (
	"strconv"
	"strings"
)

// parseSizeRangeMidpoint parses self-reported size-range strings like
// "1-10", "11-50", "501+" into a representative integer. Returns false when
// the string is empty or not recognizable.
func parseSizeRangeMidpoint(sizeRange string) (int, bool) {
	s := strings.TrimSpace(sizeRange)
	if s == "" {
		return 0, false
	}

	if strings.HasSuffix(s, "+") {
		base, err := strconv.Atoi(strings.TrimSuffix(s, "+"))
		if err != nil {
			return 0, false
		}
		return base, true
	}

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	lo, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	hi, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, false
	}
	return (lo + hi) / 2, true
}
