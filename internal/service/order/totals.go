package order

import (
	"github.com/shopspring/decimal"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/errors"
	"github.com/dumeirei/kitchen-pos-backend/internal/models"
)

// Totals 订单金额
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals 由明细计算金额，total = subtotal + tax - discount
// tax 为 nil 时按税率计算并保留两位小数
func ComputeTotals(items []models.OrderItem, tax *decimal.Decimal, discount, taxRate decimal.Decimal) (Totals, error) {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}

	var t decimal.Decimal
	if tax != nil {
		t = *tax
	} else {
		t = subtotal.Mul(taxRate).Round(2)
	}

	if t.IsNegative() {
		return Totals{}, errors.ErrOrderAmountInvalid.WithMessage("税额不能为负")
	}
	if discount.IsNegative() {
		return Totals{}, errors.ErrOrderAmountInvalid.WithMessage("折扣不能为负")
	}

	total := subtotal.Add(t).Sub(discount)
	if total.IsNegative() {
		return Totals{}, errors.ErrOrderAmountInvalid.WithMessage("折扣不能超过订单金额")
	}
	return Totals{Subtotal: subtotal, Tax: t, Discount: discount, Total: total}, nil
}

// lineTotal 明细金额
func lineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}
