package model

import (
	"fmt"
	"time"
)

// IntervalDuration converts a TwelveData-style interval name into its length.
func IntervalDuration(interval string) (time.Duration, error) {
	switch interval {
	case "1min":
		return time.Minute, nil
	case "5min":
		return 5 * time.Minute, nil
	case "15min":
		return 15 * time.Minute, nil
	case "30min":
		return 30 * time.Minute, nil
	case "45min":
		return 45 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "2h":
		return 2 * time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "8h":
		return 8 * time.Hour, nil
	case "1day":
		return 24 * time.Hour, nil
	case "1week":
		return 7 * 24 * time.Hour, nil
	}
	return 0, fmt.Errorf("unsupported interval %q", interval)
}
