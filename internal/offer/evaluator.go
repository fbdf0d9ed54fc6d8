package offer

import (
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluate returns the discount o grants on subtotal, rounded to cents.
// It never exceeds the offer cap or the subtotal itself.
func Evaluate(o Offer, subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() || subtotal.LessThan(o.MinCartValue) {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch o.Discount.Kind {
	case DiscountPercentage:
		d = subtotal.Mul(o.Discount.Value).Div(hundred)
	case DiscountFlatAmount:
		d = o.Discount.Value
	default:
		return decimal.Zero
	}
	if !d.IsPositive() {
		return decimal.Zero
	}

	if o.MaxDiscount.Valid && d.GreaterThan(o.MaxDiscount.Decimal) {
		d = o.MaxDiscount.Decimal
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	return d.Round(2)
}

// Apply walks offers from highest to lowest priority, summing every
// positive discount. The first non-stackable offer that yields a discount
// is included and ends the walk. Offers of equal priority keep their input
// order.
func Apply(offers []Offer, subtotal decimal.Decimal) Result {
	sorted := make([]Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	total := decimal.Zero
	applied := make([]AppliedOffer, 0, len(sorted))
	for _, o := range sorted {
		d := Evaluate(o, subtotal)
		if !d.IsPositive() {
			continue
		}

		total = total.Add(d)
		applied = append(applied, AppliedOffer{OfferID: o.ID, Title: o.Title, Discount: d})

		if !o.Stackable {
			break
		}
	}

	if total.GreaterThan(subtotal) {
		total = subtotal
	}
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Result{DiscountTotal: total.Round(2), Applied: applied}
}
