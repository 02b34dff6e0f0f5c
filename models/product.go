package models

// OptionKind identifies how a product option is presented and priced
type OptionKind string

const (
	OptionKindDropdown     OptionKind = "dropdown"
	OptionKindRadio        OptionKind = "radio"
	OptionKindNumericRange OptionKind = "numeric_range"
)

// Product represents a storefront product with its pricing rules.
// Tiers and options are loaded once per product view and treated as
// immutable for the session.
type Product struct {
	ID          int64           `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Currency    string          `json:"currency"` // e.g. "COP"
	IsActive    bool            `json:"isActive"`
	Tiers       []QuantityTier  `json:"tiers"`
	Options     []ProductOption `json:"options"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	UpdatedAt   string          `json:"updatedAt,omitempty"`
}

// QuantityTier represents one quantity breakpoint of a product.
// BasePrice is the total price for Quantity units before option
// surcharges; PricePerUnit is stored redundantly for display and must
// stay consistent with BasePrice. All amounts are in currency minor
// units.
type QuantityTier struct {
	Quantity          int      `json:"quantity"`
	BasePrice         int64    `json:"basePrice"`
	PricePerUnit      int64    `json:"pricePerUnit"`
	SavingsPercentage *float64 `json:"savingsPercentage,omitempty"` // advisory display value only
	IsRecommended     bool     `json:"isRecommended,omitempty"`
}

// ProductOption represents a configurable attribute of a product
// (e.g. "Paper Finish"). Label is the unique key within the product.
// For OptionKindNumericRange, Values is empty and NumericMin,
// NumericMax and NumericUnitPrice apply instead.
type ProductOption struct {
	Label      string        `json:"label"`
	Kind       OptionKind    `json:"kind"`
	IsRequired bool          `json:"isRequired"`
	Values     []OptionValue `json:"values,omitempty"`
	NumericMin int64         `json:"numericMin,omitempty"`
	NumericMax int64         `json:"numericMax,omitempty"`
	// NumericUnitPrice is the per-unit surcharge contributed by each
	// counted unit of a numeric option (minor units).
	NumericUnitPrice int64 `json:"numericUnitPrice,omitempty"`
}

// OptionValue represents one selectable value of a dropdown or radio
// option. BasePrice is the default per-unit surcharge; PriceByTier
// optionally overrides it per tier, keyed by the tier's quantity label
// (e.g. "500"). A missing key means "no override", which is distinct
// from an explicit 0 surcharge.
type OptionValue struct {
	Value       string           `json:"value"`
	Label       string           `json:"label"`
	BasePrice   int64            `json:"basePrice"`
	PriceByTier map[string]int64 `json:"priceByTier,omitempty"`
}

// SelectedValue is the customer's choice for one option. Exactly one
// of Choice (dropdown/radio) or Amount (numeric range) is meaningful,
// discriminated by the option's Kind.
type SelectedValue struct {
	Choice string `json:"choice,omitempty"`
	Amount int64  `json:"amount,omitempty"`
}

// SelectedOptions maps option labels to the customer's current choice.
// An option is unset until the customer picks a value.
type SelectedOptions map[string]SelectedValue

// PriceBreakdown is the derived pricing shown to the customer. It is a
// pure projection of the catalog and the current selection, recomputed
// on every change and never persisted outside an order snapshot. All
// amounts are in currency minor units.
type PriceBreakdown struct {
	BasePrice    int64 `json:"basePrice"`
	OptionsPrice int64 `json:"optionsPrice"`
	TotalPrice   int64 `json:"totalPrice"`
	PricePerUnit int64 `json:"pricePerUnit"`
}

// IsZero reports whether the breakdown is the zero-state returned when
// no tier is selected.
func (b PriceBreakdown) IsZero() bool {
	return b.BasePrice == 0 && b.OptionsPrice == 0 && b.TotalPrice == 0 && b.PricePerUnit == 0
}

// Clone returns an independent copy of the selected options map so a
// snapshot cannot be mutated through the original.
func (s SelectedOptions) Clone() SelectedOptions {
	if s == nil {
		return nil
	}
	out := make(SelectedOptions, len(s))
	for label, v := range s {
		out[label] = v
	}
	return out
}
