package pricing

import (
	"fmt"
	"strings"

	"imprenta-studio/models"
)

// Selection is the customer's current choice of tier, quantity and
// options. It is an immutable value: Reduce returns a new Selection
// and never mutates its input, so a breakdown can always be recomputed
// from (catalog, selection) with no hidden state.
//
// TierIndex indexes the catalog's sorted tiers; -1 means no tier
// chosen yet. Quantity normally equals the selected tier's nominal
// quantity but may be overridden independently; whenever the two
// diverge, the override drives both optionsPrice and the per-unit
// display.
type Selection struct {
	TierIndex int
	Quantity  int
	Options   models.SelectedOptions
}

// NoSelection is the initial state: no tier chosen, nothing selected.
func NoSelection() Selection {
	return Selection{TierIndex: -1}
}

// Action is a selection transition. The concrete types are SelectTier,
// SelectOption and SetQuantity.
type Action interface {
	isAction()
}

// SelectTier chooses a tier by sorted index and resets the quantity to
// that tier's nominal quantity.
type SelectTier struct {
	Index int
}

// SelectOption upserts one option choice. The value is not validated
// here; the resolver degrades gracefully on unknown values.
type SelectOption struct {
	Label string
	Value models.SelectedValue
}

// SetQuantity overrides the quantity independently of the tier.
type SetQuantity struct {
	Quantity int
}

func (SelectTier) isAction()   {}
func (SelectOption) isAction() {}
func (SetQuantity) isAction()  {}

// Reduce applies one action to a selection and returns the resulting
// selection. Invalid actions (out-of-range tier, non-positive
// quantity) leave the selection unchanged.
func (c *Catalog) Reduce(sel Selection, action Action) Selection {
	switch a := action.(type) {
	case SelectTier:
		if a.Index < 0 || a.Index >= len(c.Tiers) {
			return sel
		}
		sel.TierIndex = a.Index
		sel.Quantity = c.Tiers[a.Index].Quantity
		return sel
	case SelectOption:
		if a.Label == "" {
			return sel
		}
		opts := sel.Options.Clone()
		if opts == nil {
			opts = models.SelectedOptions{}
		}
		opts[a.Label] = a.Value
		sel.Options = opts
		return sel
	case SetQuantity:
		if a.Quantity <= 0 {
			return sel
		}
		sel.Quantity = a.Quantity
		return sel
	}
	return sel
}

// ValidationError reports the required options still missing at
// submit time. The caller renders it inline; nothing is silently
// defaulted.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required options not selected: %s", strings.Join(e.Missing, ", "))
}

// MissingRequired returns the labels of required options without a
// present, non-empty entry in the selection, in catalog order.
func (c *Catalog) MissingRequired(sel Selection) []string {
	var missing []string
	for _, opt := range c.Options {
		if !opt.IsRequired {
			continue
		}
		chosen, ok := sel.Options[opt.Label]
		if !ok {
			missing = append(missing, opt.Label)
			continue
		}
		switch opt.Kind {
		case models.OptionKindNumericRange:
			if chosen.Amount <= 0 {
				missing = append(missing, opt.Label)
			}
		default:
			if chosen.Choice == "" {
				missing = append(missing, opt.Label)
			}
		}
	}
	return missing
}

// CanSubmit reports whether checkout is permitted: a tier is selected
// and every required option has a value.
func (c *Catalog) CanSubmit(sel Selection) bool {
	if sel.TierIndex < 0 || sel.TierIndex >= len(c.Tiers) {
		return false
	}
	return len(c.MissingRequired(sel)) == 0
}

// OrderIntent snapshots the selection into an immutable order-intent
// for checkout. The options map is deep-copied, so later edits to the
// selection can never retroactively change an already-taken snapshot.
// Returns a *ValidationError when submission is not permitted.
func (c *Catalog) OrderIntent(sel Selection) (*models.OrderIntent, error) {
	if sel.TierIndex < 0 || sel.TierIndex >= len(c.Tiers) {
		return nil, &ValidationError{Missing: []string{"tier"}}
	}
	if missing := c.MissingRequired(sel); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	tier := c.Tiers[sel.TierIndex]
	quantity := sel.Quantity
	if quantity <= 0 {
		quantity = tier.Quantity
	}

	return &models.OrderIntent{
		ProductID:       c.Product.ID,
		ProductSlug:     c.Product.Slug,
		TierQuantity:    tier.Quantity,
		Quantity:        quantity,
		SelectedOptions: sel.Options.Clone(),
		Pricing:         c.Price(sel),
	}, nil
}
