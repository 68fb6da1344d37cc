package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// DefaultRSIPeriod is the conventional Wilder lookback.
const DefaultRSIPeriod = 14

// NeutralRSI is reported when history is too short to compute an oscillator value.
const NeutralRSI = 50.0

// CalculateRSI computes the Wilder-smoothed RSI of the final close.
// Requires at least period+1 closes. Returns 50.0 if data is insufficient.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return NeutralRSI, nil
	}

	values := talib.Rsi(closes, period)
	if len(values) == 0 {
		return NeutralRSI, nil
	}
	last := values[len(values)-1]
	if math.IsNaN(last) {
		return NeutralRSI, nil
	}
	return last, nil
}
