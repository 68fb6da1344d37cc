package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRSI_InsufficientData(t *testing.T) {
	rsi, err := CalculateRSI([]float64{1, 2, 3}, 14)
	require.NoError(t, err)
	assert.Equal(t, NeutralRSI, rsi)
}

func TestCalculateRSI_InvalidPeriod(t *testing.T) {
	_, err := CalculateRSI([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestCalculateRSI_Trends(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i) + float64(i%3)*0.1
		down[i] = 200 - float64(i) - float64(i%3)*0.1
	}

	rsiUp, err := CalculateRSI(up, 14)
	require.NoError(t, err)
	assert.Greater(t, rsiUp, 70.0)

	rsiDown, err := CalculateRSI(down, 14)
	require.NoError(t, err)
	assert.Less(t, rsiDown, 30.0)
}
