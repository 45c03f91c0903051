package collector

import (
	"fmt"
	"strconv"
	"strings"
)

// PeriodWeeks converts a provider period such as "10y", "6mo" or "2wk" into
// an approximate number of weekly bars.
func PeriodWeeks(period string) (int, error) {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "max" {
		return 52 * 100, nil
	}
	units := []struct {
		suffix string
		weeks  float64
	}{
		{"mo", 52.0 / 12},
		{"wk", 1},
		{"y", 52},
		{"d", 1.0 / 7},
	}
	for _, u := range units {
		if !strings.HasSuffix(p, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(p, u.suffix))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid period %q", period)
		}
		weeks := int(float64(n)*u.weeks + 0.5)
		if weeks < 1 {
			weeks = 1
		}
		return weeks, nil
	}
	return 0, fmt.Errorf("invalid period %q", period)
}
