package program

import "github.com/shopspring/decimal"

// LamportsPerCoin is the currency scale of the ledger: 1e9 of the smallest
// indivisible unit equal one whole coin.
const LamportsPerCoin = 1_000_000_000

// FeeRate is the platform cut taken from gross pari-mutuel payouts.
var FeeRate = decimal.NewFromFloat(0.03)

// coins converts a raw lamport-scale amount to whole coins, rounded half-up
// to 4 decimal places. Rounding happens here, once, at the decode boundary;
// all downstream arithmetic operates on the already-rounded decimals.
func coins(raw uint64) decimal.Decimal {
	return decimal.NewFromUint64(raw).Shift(-9).Round(4)
}

// percent returns 100*part/total rounded to 2 decimal places, or fallback
// when total is zero.
func percent(part, total decimal.Decimal, fallback float64) float64 {
	if total.IsZero() {
		return fallback
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}

// roundPercent rounds a plain float percentage to 2 decimal places.
func roundPercent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
