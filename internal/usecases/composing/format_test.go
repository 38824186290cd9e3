package composing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatCurrency(1234.5))
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$1,000,000.00", FormatCurrency(1000000))
	assert.Equal(t, "$0.99", FormatCurrency(0.994))
}

func TestFormatRoas(t *testing.T) {
	assert.Equal(t, "2.17x", FormatRoas(2.1667))
	assert.Equal(t, "0.00x", FormatRoas(0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "2.50%", FormatPercent(2.5))
	assert.Equal(t, "0.00%", FormatPercent(0))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "0", FormatCount(0))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+10.0%", FormatDelta(110, 100))
	assert.Equal(t, "-10.0%", FormatDelta(90, 100))
	assert.Equal(t, "+0.0%", FormatDelta(100, 100))

	// Base zero não tem variação para exibir
	assert.Equal(t, "", FormatDelta(50, 0))
}
