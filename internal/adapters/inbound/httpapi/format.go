package httpapi

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/sufield/yieldvault/internal/domain"
)

// AmountView renders an integer amount alongside its human-readable value.
type AmountView struct {
	Units string `json:"units"`
	Value string `json:"value"`
}

// amountFormatter scales base units by the asset's decimals.
type amountFormatter struct {
	decimals int32
}

func (f amountFormatter) toDecimal(a domain.Amount) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(a)), -f.decimals)
}

func (f amountFormatter) view(a domain.Amount) AmountView {
	return AmountView{
		Units: a.String(),
		Value: f.toDecimal(a).StringFixed(f.decimals),
	}
}

// pricePerShare is assets per share with 18 fractional digits, truncated.
// With no shares outstanding the bootstrap price of 1 applies.
func pricePerShare(totalValue, supply domain.Amount) string {
	if supply == 0 {
		return decimal.NewFromInt(1).StringFixed(18)
	}
	v := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(totalValue)), 0)
	s := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(supply)), 0)
	return v.DivRound(s, 19).Truncate(18).StringFixed(18)
}
