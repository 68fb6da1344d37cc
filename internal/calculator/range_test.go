package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingRange(t *testing.T) {
	prices := []float64{100, 120, 90, 110, 105}

	high, low, err := TrailingRange(prices, 3)
	require.NoError(t, err)
	assert.Equal(t, 110.0, high)
	assert.Equal(t, 90.0, low)

	high, low, err = TrailingRange(prices, 30)
	require.NoError(t, err)
	assert.Equal(t, 120.0, high)
	assert.Equal(t, 90.0, low)

	_, _, err = TrailingRange(nil, 3)
	assert.Error(t, err)
	_, _, err = TrailingRange(prices, 0)
	assert.Error(t, err)
}

func TestDrawdownFromHigh(t *testing.T) {
	assert.InDelta(t, 5.0, DrawdownFromHigh(95, 100), 1e-9)
	assert.Equal(t, 0.0, DrawdownFromHigh(101, 100))
	assert.Equal(t, 0.0, DrawdownFromHigh(50, 0))
}
