package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var uptimeUnits = []struct {
	suffix  byte
	seconds int64
}{
	{'w', 7 * 24 * 3600},
	{'d', 24 * 3600},
	{'h', 3600},
	{'m', 60},
	{'s', 1},
}

// ParseUptime converts a RouterOS uptime such as "1w2d3h4m5s", "45m10s" or
// "30s" into whole seconds. Units may appear in any subset but each at most
// once.
func ParseUptime(uptime string) (int64, error) {
	s := strings.TrimSpace(uptime)
	if s == "" {
		return 0, fmt.Errorf("empty uptime")
	}

	var total int64
	seen := make(map[byte]bool, len(uptimeUnits))
	for len(s) > 0 {
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 || i == len(s) {
			return 0, fmt.Errorf("malformed uptime %q", uptime)
		}

		n, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed uptime %q: %w", uptime, err)
		}

		// RouterOS appends milliseconds for very short sessions ("900ms").
		if strings.HasPrefix(s[i:], "ms") {
			s = s[i+2:]
			continue
		}

		unit := s[i]
		mult := unitSeconds(unit)
		if mult == 0 || seen[unit] {
			return 0, fmt.Errorf("malformed uptime %q", uptime)
		}
		seen[unit] = true
		if n > (math.MaxInt64-total)/mult {
			return 0, fmt.Errorf("uptime %q out of range", uptime)
		}
		total += n * mult
		s = s[i+1:]
	}

	return total, nil
}

// FormatUptime is the inverse of ParseUptime for non-negative input.
func FormatUptime(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}

	var b strings.Builder
	for _, u := range uptimeUnits {
		if seconds >= u.seconds {
			fmt.Fprintf(&b, "%d%c", seconds/u.seconds, u.suffix)
			seconds %= u.seconds
		}
	}
	return b.String()
}

func unitSeconds(unit byte) int64 {
	for _, u := range uptimeUnits {
		if u.suffix == unit {
			return u.seconds
		}
	}
	return 0
}
