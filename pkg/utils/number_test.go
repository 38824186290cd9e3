package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.5, SafeDivide(5, 2))
	assert.Equal(t, 0.0, SafeDivide(5, 0))
	assert.Equal(t, 0.0, SafeDivide(0, 0))
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", GroupThousands(0))
	assert.Equal(t, "999", GroupThousands(999))
	assert.Equal(t, "1,000", GroupThousands(1000))
	assert.Equal(t, "1,234,567", GroupThousands(1234567))
	assert.Equal(t, "-12,345", GroupThousands(-12345))
}

func TestGroupedFloat(t *testing.T) {
	assert.Equal(t, "1,234.50", GroupedFloat(1234.5))
	assert.Equal(t, "0.00", GroupedFloat(0))
	assert.Equal(t, "0.99", GroupedFloat(0.994))
	// Arredondamento da fração estoura para a parte inteira
	assert.Equal(t, "1,000.00", GroupedFloat(999.999))
	assert.Equal(t, "-1,234.50", GroupedFloat(-1234.5))
}
