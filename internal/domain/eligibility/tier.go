package eligibility

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"pocketcredit-backend/internal/domain/amortization"
)

// RatePlaces is the precision rates are stored with.
const RatePlaces int32 = 8

// Tier is one row of the rate card. Rate is annual for month tiers and per day for
// day tiers.
type Tier struct {
	Name       string                  `json:"tier_name"`
	MinAmount  decimal.Decimal         `json:"min_amount"`
	MaxAmount  decimal.Decimal         `json:"max_amount"`
	MaxTenure  int                     `json:"max_tenure"`
	TenureUnit amortization.TenureUnit `json:"tenure_unit"`
	Rate       decimal.Decimal         `json:"rate"`
}

func (t Tier) Validate() error {
	switch {
	case t.Name == "":
		return fmt.Errorf("tier: name is required")
	case !t.MinAmount.IsPositive() || t.MaxAmount.LessThan(t.MinAmount):
		return fmt.Errorf("tier %s: amount range %s..%s is invalid", t.Name, t.MinAmount, t.MaxAmount)
	case t.MaxTenure <= 0:
		return fmt.Errorf("tier %s: max tenure must be positive", t.Name)
	case !t.TenureUnit.Valid():
		return fmt.Errorf("tier %s: tenure unit %q is not month or day", t.Name, t.TenureUnit)
	case t.Rate.IsNegative():
		return fmt.Errorf("tier %s: rate must not be negative", t.Name)
	case !t.Rate.Equal(t.Rate.Round(RatePlaces)):
		return fmt.Errorf("tier %s: rate %s has more than %d decimal places", t.Name, t.Rate, RatePlaces)
	}
	return nil
}

// RateCard indexes tiers by name.
type RateCard map[string]Tier

func NewRateCard(tiers []Tier) (RateCard, error) {
	rc := make(RateCard, len(tiers))
	for _, t := range tiers {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := rc[t.Name]; dup {
			return nil, fmt.Errorf("tier %s: declared twice", t.Name)
		}
		rc[t.Name] = t
	}
	return rc, nil
}

func (rc RateCard) Lookup(name string) (Tier, bool) {
	t, ok := rc[name]
	return t, ok
}

// Tiers lists the card ordered by minimum amount.
func (rc RateCard) Tiers() []Tier {
	out := make([]Tier, 0, len(rc))
	for _, t := range rc {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MinAmount.Equal(out[j].MinAmount) {
			return out[i].Name < out[j].Name
		}
		return out[i].MinAmount.LessThan(out[j].MinAmount)
	})
	return out
}
