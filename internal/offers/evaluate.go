package offers

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Evaluate returns the discount in cents for the given cart subtotal and
// selected offer. It is deterministic and side-effect free; callers re-run it
// whenever the subtotal, item set, or selected offer changes.
//
// Rules:
//   - nil offer or subtotal below the qualifying minimum yields 0.
//   - percentage benefits compute subtotal × percent / 100 (rounded down to
//     whole cents) and honor the cap when one is set.
//   - flat benefits never exceed the subtotal they apply to.
//   - the result is clamped to [0, subtotal] regardless of branch.
func Evaluate(subtotalCents int64, offer *Offer) int64 {
	if offer == nil || subtotalCents <= 0 || !offer.Qualifies(subtotalCents) {
		return 0
	}

	var discount int64
	switch offer.Benefit.Type {
	case BenefitPercentage:
		raw := decimal.NewFromInt(subtotalCents).
			Mul(offer.Benefit.Percent).
			Div(hundred).
			Floor().
			IntPart()
		discount = raw
		if offer.Benefit.CapCents > 0 && discount > offer.Benefit.CapCents {
			discount = offer.Benefit.CapCents
		}
	case BenefitFlat:
		discount = offer.Benefit.FlatCents
		if discount > subtotalCents {
			discount = subtotalCents
		}
	default:
		return 0
	}

	if discount < 0 {
		return 0
	}
	if discount > subtotalCents {
		return subtotalCents
	}
	return discount
}
