// Package billing computes receipt totals and change for the front-desk cart.
// All amounts are decimal.Decimal; nothing here touches float64.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientPayment is returned when the tendered amount is below the total.
	ErrInsufficientPayment = errors.New("insufficient payment")
	// ErrInvalidTender is returned for negative or sub-cent tendered amounts.
	ErrInvalidTender = errors.New("invalid tendered amount")
)

// LineItem is one billable treatment in a cart. Fee is the catalog fee at the
// moment the item was added.
type LineItem struct {
	Treatment string          `json:"treatment"`
	Fee       decimal.Decimal `json:"fee"`
}

// Totals is the numeric summary of a cart.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// DiscountRule returns the discount to apply to a cart. The calculator clamps
// the result to [0, subtotal].
type DiscountRule func(items []LineItem, subtotal decimal.Decimal) decimal.Decimal

// NoDiscount is the rule in force today.
func NoDiscount([]LineItem, decimal.Decimal) decimal.Decimal { return decimal.Zero }

// Calculator sums line items. The zero value applies NoDiscount.
type Calculator struct {
	Discount DiscountRule
}

// Total sums the fees of items in order and applies the discount rule.
func (c Calculator) Total(items []LineItem) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Fee)
	}
	rule := c.Discount
	if rule == nil {
		rule = NoDiscount
	}
	discount := rule(items, subtotal)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// Total is Calculator{}.Total.
func Total(items []LineItem) Totals { return Calculator{}.Total(items) }

// Change returns tendered - total. It fails with ErrInsufficientPayment when
// tendered < total; there are no partial payments. Tendered must be a
// non-negative amount in whole cents.
func Change(total, tendered decimal.Decimal) (decimal.Decimal, error) {
	if !ValidTender(tendered) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidTender, tendered.String())
	}
	if tendered.LessThan(total) {
		return decimal.Zero, fmt.Errorf("%w: tendered %s, due %s",
			ErrInsufficientPayment, tendered.StringFixed(2), total.StringFixed(2))
	}
	return tendered.Sub(total), nil
}

// ValidTender reports whether d is non-negative with at most two decimals.
func ValidTender(d decimal.Decimal) bool {
	return !d.IsNegative() && d.Equal(d.Round(2))
}

// Receipt is the derived view of a cart plus any recorded payment. It is
// never stored.
type Receipt struct {
	Items    []LineItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	Tendered decimal.Decimal `json:"tendered"`
	Change   decimal.Decimal `json:"change"`
}

// NewReceipt builds a receipt for items. Change is only filled in when
// tendered is positive.
func (c Calculator) NewReceipt(items []LineItem, tendered decimal.Decimal) Receipt {
	t := c.Total(items)
	r := Receipt{
		Items:    append([]LineItem(nil), items...),
		Subtotal: t.Subtotal,
		Discount: t.Discount,
		Total:    t.Total,
		Tendered: tendered,
		Change:   decimal.Zero,
	}
	if tendered.IsPositive() {
		r.Change = tendered.Sub(t.Total)
	}
	return r
}

// NewReceipt is Calculator{}.NewReceipt.
func NewReceipt(items []LineItem, tendered decimal.Decimal) Receipt {
	return Calculator{}.NewReceipt(items, tendered)
}
