package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotal(t *testing.T) {
	// 100% rate is the identity.
	assert.Equal(t, int64(500000), Total(500000, 1, RateScale))

	// 85% of a 10,000 NGN card.
	assert.Equal(t, int64(850000), Total(1000000, 1, 8500))

	// Quantity multiplies before the rate is applied.
	assert.Equal(t, int64(2550000), Total(1000000, 3, 8500))
}

func TestTotalRoundsHalfUp(t *testing.T) {
	// 333 * 1 * 0.5 = 166.5 -> 167
	assert.Equal(t, int64(167), Total(333, 1, 5000))

	// 333 * 1 * 0.25 = 83.25 -> 83
	assert.Equal(t, int64(83), Total(333, 1, 2500))

	// 1 * 1 * 0.005 = 0.5 -> 1
	assert.Equal(t, int64(1), Total(1, 1, 50))
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "NGN 1234.50", FormatNaira(123450))
	assert.Equal(t, "NGN 0.01", FormatNaira(1))
}
