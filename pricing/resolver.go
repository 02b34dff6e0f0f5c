package pricing

import (
	"strconv"

	"imprenta-studio/models"
)

// Price computes the breakdown for the current selection. It is pure
// and deterministic: same catalog and selection, same result.
func (c *Catalog) Price(sel Selection) models.PriceBreakdown {
	return c.PriceAt(sel.TierIndex, sel.Quantity, sel.Options)
}

// PriceAt computes the breakdown for a hypothetical tier index and
// quantity, holding the given option selections fixed. This is the
// same computation used for the live previews next to each tier and
// each dropdown entry, so previewing a tier gives exactly the result
// of selecting it.
//
// An out-of-range tier index means "no tier chosen yet" and yields the
// zero breakdown rather than an error; a flickering intermediate UI
// state must never crash price display. A quantity <= 0 falls back to
// the tier's nominal quantity.
func (c *Catalog) PriceAt(tierIndex, quantity int, opts models.SelectedOptions) models.PriceBreakdown {
	if tierIndex < 0 || tierIndex >= len(c.Tiers) {
		return models.PriceBreakdown{}
	}

	tier := c.Tiers[tierIndex]
	if quantity <= 0 {
		quantity = tier.Quantity
	}

	perUnitModifier := c.perUnitModifier(tier, opts)
	optionsPrice := perUnitModifier * int64(quantity)

	return models.PriceBreakdown{
		BasePrice:    tier.BasePrice,
		OptionsPrice: optionsPrice,
		TotalPrice:   tier.BasePrice + optionsPrice,
		PricePerUnit: tier.PricePerUnit + perUnitModifier,
	}
}

// perUnitModifier sums the per-unit surcharges of every selected
// option at the given tier. Unknown option labels are skipped and
// unknown values contribute 0: stale keys from a previous render must
// not fail the whole computation. The tier-matching key for overrides
// is the tier's quantity, not its index, so an override follows the
// same quantity across catalog reorderings.
func (c *Catalog) perUnitModifier(tier models.QuantityTier, opts models.SelectedOptions) int64 {
	var total int64
	tierLabel := strconv.Itoa(tier.Quantity)

	for label, chosen := range opts {
		opt, ok := c.Option(label)
		if !ok {
			continue
		}

		switch opt.Kind {
		case models.OptionKindNumericRange:
			amount := chosen.Amount
			if amount < opt.NumericMin {
				amount = opt.NumericMin
			}
			if amount > opt.NumericMax {
				amount = opt.NumericMax
			}
			total += opt.NumericUnitPrice * amount
		default:
			val, ok := lookupValue(opt, chosen.Choice)
			if !ok {
				continue
			}
			if override, ok := val.PriceByTier[tierLabel]; ok {
				total += override
			} else {
				total += val.BasePrice
			}
		}
	}

	return total
}

// TierPreviews returns the breakdown each tier would produce if
// selected, holding the current option selections fixed. Index i of
// the result corresponds to sorted tier i.
func (c *Catalog) TierPreviews(sel Selection) []models.PriceBreakdown {
	previews := make([]models.PriceBreakdown, len(c.Tiers))
	for i := range c.Tiers {
		previews[i] = c.PriceAt(i, 0, sel.Options)
	}
	return previews
}

// OptionPreviews returns, for each value of the given option, the
// breakdown that would result from choosing it while holding the tier
// and the other option selections fixed. Returns nil for unknown
// labels and for numeric options, which have no enumerable values.
func (c *Catalog) OptionPreviews(sel Selection, label string) map[string]models.PriceBreakdown {
	opt, ok := c.Option(label)
	if !ok || opt.Kind == models.OptionKindNumericRange {
		return nil
	}

	previews := make(map[string]models.PriceBreakdown, len(opt.Values))
	for _, val := range opt.Values {
		hypothetical := sel.Options.Clone()
		if hypothetical == nil {
			hypothetical = models.SelectedOptions{}
		}
		hypothetical[label] = models.SelectedValue{Choice: val.Value}
		previews[val.Value] = c.PriceAt(sel.TierIndex, sel.Quantity, hypothetical)
	}
	return previews
}

// TaxedTotal is the result of applying tax downstream of the
// breakdown's total. Tax is never folded into the per-unit modifier.
type TaxedTotal struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// ApplyTax applies a tax rate given in basis points (e.g. 1900 for
// 19% IVA) to a subtotal, rounding half up to the nearest minor unit.
func ApplyTax(subtotal int64, rateBasisPoints int64) TaxedTotal {
	tax := (subtotal*rateBasisPoints + 5000) / 10000
	return TaxedTotal{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}
