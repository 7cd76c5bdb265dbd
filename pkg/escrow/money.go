package escrow

import "github.com/shopspring/decimal"

var centsPerUnit = decimal.NewFromInt(100)

// FormatCents renders an integer cent amount as a decimal currency
// string, e.g. 1250 -> "12.50". Display only; the ledger stores cents.
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).DivRound(centsPerUnit, 2).StringFixed(2)
}
