package offers

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BenefitType tags the discount mechanism of an offer.
type BenefitType string

const (
	BenefitPercentage BenefitType = "percentage"
	BenefitFlat       BenefitType = "flat"
)

// IsValid reports whether the benefit type is one of the known variants.
func (b BenefitType) IsValid() bool {
	switch b {
	case BenefitPercentage, BenefitFlat:
		return true
	}
	return false
}

// ParseBenefitType normalizes a wire value into a BenefitType.
func ParseBenefitType(value string) BenefitType {
	return BenefitType(strings.ToLower(strings.TrimSpace(value)))
}

// Benefit is the tagged discount variant: a percentage with an optional cap,
// or a flat amount. CapCents == 0 means the percentage is unbounded.
type Benefit struct {
	Type      BenefitType     `json:"type"`
	Percent   decimal.Decimal `json:"percent,omitempty"`
	CapCents  int64           `json:"cap_cents,omitempty"`
	FlatCents int64           `json:"flat_cents,omitempty"`
}

// Offer is a store-defined promotional rule. Offers are read-only data
// supplied by the catalog; the cart selects and evaluates one at a time
// per store.
type Offer struct {
	ID               string  `json:"id"`
	StoreID          string  `json:"store_id"`
	MinSubtotalCents int64   `json:"min_subtotal_cents"`
	Benefit          Benefit `json:"benefit"`
}

// Qualifies reports whether the subtotal meets the offer's qualifying minimum.
func (o *Offer) Qualifies(subtotalCents int64) bool {
	if o == nil {
		return false
	}
	return subtotalCents >= o.MinSubtotalCents
}
