package fiscal

import "github.com/shopspring/decimal"

// =============================================================================
// MONEY - Integer yen with decimal-backed intermediate math
// =============================================================================

// Yen is an amount of money in whole yen. All engine outputs are integral;
// fractional intermediates (hourly rates, utilization shares, tax markup) are
// carried as decimals and floored exactly once at the boundary.
type Yen int64

var (
	hundred = decimal.NewFromInt(100)
	taxRate = decimal.RequireFromString("1.1")
)

func (y Yen) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(y)) }

// FloorYen truncates a decimal amount down to whole yen.
func FloorYen(d decimal.Decimal) Yen { return Yen(d.Floor().IntPart()) }

// Percent returns floor(y * pct / 100).
func (y Yen) Percent(pct int) Yen {
	return FloorYen(y.Decimal().Mul(decimal.NewFromInt(int64(pct))).Div(hundred))
}

// WithTax applies the 10% consumption-tax markup: floor(y * 1.1).
func (y Yen) WithTax() Yen {
	return FloorYen(y.Decimal().Mul(taxRate))
}
