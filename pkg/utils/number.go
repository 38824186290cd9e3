package utils

import (
	"fmt"
	"math"
	"strconv"
)

func RoundWithTwoDecimalPlace(f float64) float64 {
	if f == 0 {
		return 0
	}

	return math.Round(f*100) / 100
}

// SafeDivide divide num por den retornando 0 quando o denominador é zero,
// nunca NaN ou Inf
func SafeDivide(num, den float64) float64 {
	if den == 0 {
		return 0
	}

	result := num / den
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0
	}

	return result
}

// GroupThousands insere separador de milhar em um inteiro: 1234567 -> "1,234,567"
func GroupThousands(n int64) string {
	raw := strconv.FormatInt(n, 10)

	negative := false
	if len(raw) > 0 && raw[0] == '-' {
		negative = true
		raw = raw[1:]
	}

	var grouped []byte
	for i := 0; i < len(raw); i++ {
		if i > 0 && (len(raw)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, raw[i])
	}

	if negative {
		return "-" + string(grouped)
	}
	return string(grouped)
}

// GroupedFloat formata um float com separador de milhar e duas casas
// decimais: 1234.5 -> "1,234.50"
func GroupedFloat(f float64) string {
	rounded := RoundWithTwoDecimalPlace(f)

	negative := rounded < 0
	abs := math.Abs(rounded)

	whole := int64(abs)
	fracStr := fmt.Sprintf("%.2f", abs-float64(whole))
	// fmt pode arredondar 0.999... para "1.00"; carrega o estouro para a parte inteira
	if fracStr[0] == '1' {
		whole++
		fracStr = "0.00"
	}

	out := GroupThousands(whole) + fracStr[1:]
	if negative {
		return "-" + out
	}
	return out
}
