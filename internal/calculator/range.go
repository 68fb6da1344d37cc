package calculator

import (
	"errors"
	"math"
)

// TrailingRange scans the most recent window prices and returns the high and low.
func TrailingRange(prices []float64, window int) (high, low float64, err error) {
	if len(prices) == 0 {
		return 0, 0, errors.New("no prices provided")
	}
	if window <= 0 {
		return 0, 0, errors.New("window must be positive")
	}
	start := len(prices) - window
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, p := range prices[start:] {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}
	return high, low, nil
}

// DrawdownFromHigh returns how far current sits below high, in percent (0 when at or above high).
func DrawdownFromHigh(current, high float64) float64 {
	if high <= 0 || current >= high {
		return 0
	}
	return (high - current) / high * 100
}
