package pricing

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"imprenta-studio/models"
)

// consistencyTolerancePerUnit is the allowed rounding drift, in minor
// units per unit, between a tier's basePrice and quantity*pricePerUnit.
const consistencyTolerancePerUnit = 1

// CatalogError reports every integrity problem found in a product's
// pricing data. A product with a CatalogError must not be displayed;
// the data is wrong and is never silently fixed.
type CatalogError struct {
	ProductSlug string
	Problems    []string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog integrity error for product %q: %s", e.ProductSlug, strings.Join(e.Problems, "; "))
}

// Catalog holds the validated, immutable pricing rules for one
// product. Tiers is sorted ascending by quantity; every tier index in
// this package is an index into that sorted sequence, never catalog
// insertion order.
type Catalog struct {
	Product *models.Product
	Tiers   []models.QuantityTier
	Options []models.ProductOption

	optionIndex map[string]int // option label -> index into Options
}

// NewCatalog validates a product's pricing data once at load time and
// returns the catalog used by the resolver. Validation failures return
// a *CatalogError listing every problem found.
func NewCatalog(product *models.Product) (*Catalog, error) {
	var problems []string

	tiers := make([]models.QuantityTier, len(product.Tiers))
	copy(tiers, product.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Quantity < tiers[j].Quantity
	})

	tierQuantities := make(map[int]bool, len(tiers))
	for _, tier := range tiers {
		if tier.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("tier quantity must be > 0, got %d", tier.Quantity))
			continue
		}
		if tier.BasePrice < 0 || tier.PricePerUnit < 0 {
			problems = append(problems, fmt.Sprintf("tier %d has negative price", tier.Quantity))
		}
		if tierQuantities[tier.Quantity] {
			problems = append(problems, fmt.Sprintf("duplicate tier quantity %d", tier.Quantity))
		}
		tierQuantities[tier.Quantity] = true

		// basePrice and pricePerUnit are stored redundantly; they must
		// agree within the rounding tolerance.
		diff := tier.BasePrice - int64(tier.Quantity)*tier.PricePerUnit
		if diff < 0 {
			diff = -diff
		}
		if diff > int64(tier.Quantity)*consistencyTolerancePerUnit {
			problems = append(problems, fmt.Sprintf(
				"tier %d: basePrice %d inconsistent with %d x pricePerUnit %d",
				tier.Quantity, tier.BasePrice, tier.Quantity, tier.PricePerUnit))
		}
	}

	// Bulk discount monotonicity: per-unit price must never increase
	// with quantity.
	for i := 1; i < len(tiers); i++ {
		if tiers[i].PricePerUnit > tiers[i-1].PricePerUnit {
			problems = append(problems, fmt.Sprintf(
				"pricePerUnit increases from tier %d (%d) to tier %d (%d)",
				tiers[i-1].Quantity, tiers[i-1].PricePerUnit, tiers[i].Quantity, tiers[i].PricePerUnit))
		}
	}

	optionIndex := make(map[string]int, len(product.Options))
	for i, opt := range product.Options {
		if opt.Label == "" {
			problems = append(problems, fmt.Sprintf("option at position %d has empty label", i))
			continue
		}
		if _, exists := optionIndex[opt.Label]; exists {
			problems = append(problems, fmt.Sprintf("duplicate option label %q", opt.Label))
			continue
		}
		optionIndex[opt.Label] = i

		switch opt.Kind {
		case models.OptionKindDropdown, models.OptionKindRadio:
			seen := make(map[string]bool, len(opt.Values))
			for _, val := range opt.Values {
				if seen[val.Value] {
					problems = append(problems, fmt.Sprintf("option %q: duplicate value %q", opt.Label, val.Value))
				}
				seen[val.Value] = true
				for tierLabel := range val.PriceByTier {
					qty, err := strconv.Atoi(tierLabel)
					if err != nil || !tierQuantities[qty] {
						problems = append(problems, fmt.Sprintf(
							"option %q value %q: priceByTier key %q does not match any tier quantity",
							opt.Label, val.Value, tierLabel))
					}
				}
			}
		case models.OptionKindNumericRange:
			if opt.NumericMin > opt.NumericMax {
				problems = append(problems, fmt.Sprintf("option %q: numeric min %d > max %d", opt.Label, opt.NumericMin, opt.NumericMax))
			}
		default:
			problems = append(problems, fmt.Sprintf("option %q has unknown kind %q", opt.Label, opt.Kind))
		}
	}

	if len(problems) > 0 {
		return nil, &CatalogError{ProductSlug: product.Slug, Problems: problems}
	}

	return &Catalog{
		Product:     product,
		Tiers:       tiers,
		Options:     product.Options,
		optionIndex: optionIndex,
	}, nil
}

// Option returns the product option with the given label, if any.
func (c *Catalog) Option(label string) (*models.ProductOption, bool) {
	i, ok := c.optionIndex[label]
	if !ok {
		return nil, false
	}
	return &c.Options[i], true
}

// TierIndexByQuantity returns the sorted-tier index for a quantity, or
// -1 when no tier has it.
func (c *Catalog) TierIndexByQuantity(quantity int) int {
	for i, tier := range c.Tiers {
		if tier.Quantity == quantity {
			return i
		}
	}
	return -1
}

// lookupValue finds a value within a dropdown/radio option.
func lookupValue(opt *models.ProductOption, value string) (*models.OptionValue, bool) {
	for i := range opt.Values {
		if opt.Values[i].Value == value {
			return &opt.Values[i], true
		}
	}
	return nil, false
}
