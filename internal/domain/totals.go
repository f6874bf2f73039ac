package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeTotals считает сумму без НДС и с НДС:
//
//	totalHt  = nbDays * tjm
//	totalTtc = totalHt * (1 + tauxTva/100)
//
// Вычисления идут в decimal, чтобы 5 * 650 при 20% давало ровно 3250 и 3900.
func ComputeTotals(nbDays int, tjm, tauxTVA float64) (totalHT, totalTTC float64) {
	ht := decimal.NewFromInt(int64(nbDays)).Mul(decimal.NewFromFloat(tjm))
	ttc := ht.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(tauxTVA).Div(hundred)))
	return ht.InexactFloat64(), ttc.InexactFloat64()
}
