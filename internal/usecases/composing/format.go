package composing

import (
	"fmt"

	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

// Formatação canônica das superfícies de exibição. Os slides carregam apenas
// estas strings; nenhum valor bruto atravessa para o renderizador.

func FormatCurrency(value float64) string {
	return "$" + utils.GroupedFloat(value)
}

func FormatRoas(value float64) string {
	return fmt.Sprintf("%.2fx", utils.RoundWithTwoDecimalPlace(value))
}

func FormatPercent(value float64) string {
	return fmt.Sprintf("%.2f%%", utils.RoundWithTwoDecimalPlace(value))
}

func FormatCount(value int64) string {
	return utils.GroupThousands(value)
}

// FormatDelta formata a variação percentual entre dois valores com sinal
// explícito; base zero resulta em string vazia, sem delta para exibir
func FormatDelta(current, previous float64) string {
	if previous == 0 {
		return ""
	}

	delta := (current - previous) / previous * 100
	if delta >= 0 {
		return fmt.Sprintf("+%.1f%%", delta)
	}
	return fmt.Sprintf("%.1f%%", delta)
}
