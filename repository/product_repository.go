package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"

	"imprenta-studio/db"
	"imprenta-studio/models"
)

// ErrProductNotFound is returned when no active product matches the slug
var ErrProductNotFound = errors.New("product not found")

// ProductRepository handles database operations for the product catalog
type ProductRepository struct{}

// NewProductRepository creates a new ProductRepository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

// Ensure ProductRepository implements ProductRepositoryInterface
var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// GetBySlug retrieves a product with its quantity tiers and options.
// Tiers come back in catalog insertion order; sorting by quantity is
// the pricing catalog's job, not the repository's.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := `
		SELECT id, slug, name, COALESCE(description, ''), COALESCE(category, ''),
		       currency, is_active, created_at, updated_at
		FROM products
		WHERE slug = $1 AND is_active = true
	`

	var product models.Product
	err := db.DB.QueryRowContext(ctx, query, slug).Scan(
		&product.ID,
		&product.Slug,
		&product.Name,
		&product.Description,
		&product.Category,
		&product.Currency,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", slug, err)
	}

	if product.Tiers, err = r.loadTiers(ctx, product.ID); err != nil {
		return nil, err
	}
	if product.Options, err = r.loadOptions(ctx, product.ID); err != nil {
		return nil, err
	}

	log.Printf("🔍 GetBySlug: Loaded product %s (%d tiers, %d options)", slug, len(product.Tiers), len(product.Options))
	return &product, nil
}

// loadTiers retrieves the quantity tiers for a product
func (r *ProductRepository) loadTiers(ctx context.Context, productID int64) ([]models.QuantityTier, error) {
	query := `
		SELECT quantity, base_price, price_per_unit, savings_percentage, is_recommended
		FROM product_tiers
		WHERE product_id = $1
		ORDER BY id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiers for product %d: %w", productID, err)
	}
	defer rows.Close()

	var tiers []models.QuantityTier
	for rows.Next() {
		var tier models.QuantityTier
		var savings sql.NullFloat64
		if err := rows.Scan(&tier.Quantity, &tier.BasePrice, &tier.PricePerUnit, &savings, &tier.IsRecommended); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		if savings.Valid {
			tier.SavingsPercentage = &savings.Float64
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

// loadOptions retrieves the configurable options with their values and
// per-tier price overrides
func (r *ProductRepository) loadOptions(ctx context.Context, productID int64) ([]models.ProductOption, error) {
	query := `
		SELECT id, label, kind, is_required,
		       COALESCE(numeric_min, 0), COALESCE(numeric_max, 0), COALESCE(numeric_unit_price, 0)
		FROM product_options
		WHERE product_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options for product %d: %w", productID, err)
	}
	defer rows.Close()

	var options []models.ProductOption
	var optionIDs []int64
	for rows.Next() {
		var opt models.ProductOption
		var id int64
		var kind string
		if err := rows.Scan(&id, &opt.Label, &kind, &opt.IsRequired, &opt.NumericMin, &opt.NumericMax, &opt.NumericUnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		opt.Kind = models.OptionKind(kind)
		options = append(options, opt)
		optionIDs = append(optionIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, optionID := range optionIDs {
		if options[i].Kind == models.OptionKindNumericRange {
			continue
		}
		values, err := r.loadOptionValues(ctx, optionID)
		if err != nil {
			return nil, err
		}
		options[i].Values = values
	}

	return options, nil
}

// loadOptionValues retrieves the selectable values of one option,
// including tier-quantity keyed overrides
func (r *ProductRepository) loadOptionValues(ctx context.Context, optionID int64) ([]models.OptionValue, error) {
	query := `
		SELECT id, value, label, base_price
		FROM product_option_values
		WHERE option_id = $1
		ORDER BY position ASC, id ASC
	`

	rows, err := db.DB.QueryContext(ctx, query, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query values for option %d: %w", optionID, err)
	}
	defer rows.Close()

	var values []models.OptionValue
	var valueIDs []int64
	for rows.Next() {
		var val models.OptionValue
		var id int64
		if err := rows.Scan(&id, &val.Value, &val.Label, &val.BasePrice); err != nil {
			return nil, fmt.Errorf("failed to scan option value: %w", err)
		}
		values = append(values, val)
		valueIDs = append(valueIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, valueID := range valueIDs {
		overrides, err := r.loadTierOverrides(ctx, valueID)
		if err != nil {
			return nil, err
		}
		values[i].PriceByTier = overrides
	}

	return values, nil
}

// loadTierOverrides retrieves the per-tier surcharge overrides of one
// option value, keyed by the tier's quantity label
func (r *ProductRepository) loadTierOverrides(ctx context.Context, valueID int64) (map[string]int64, error) {
	query := `
		SELECT tier_quantity, price_per_unit
		FROM option_value_tier_prices
		WHERE option_value_id = $1
	`

	rows, err := db.DB.QueryContext(ctx, query, valueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tier overrides for value %d: %w", valueID, err)
	}
	defer rows.Close()

	var overrides map[string]int64
	for rows.Next() {
		var quantity int
		var price int64
		if err := rows.Scan(&quantity, &price); err != nil {
			return nil, fmt.Errorf("failed to scan tier override: %w", err)
		}
		if overrides == nil {
			overrides = make(map[string]int64)
		}
		overrides[strconv.Itoa(quantity)] = price
	}
	return overrides, rows.Err()
}

// ListActive retrieves active products, optionally filtered by category.
// Only the product rows are loaded; tiers and options belong to the
// detail view.
func (r *ProductRepository) ListActive(ctx context.Context, category string) ([]models.Product, error) {
	query := `
		SELECT id, slug, name, COALESCE(description, ''), COALESCE(category, ''), currency, is_active
		FROM products
		WHERE is_active = true
	`
	args := []interface{}{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.Category, &p.Currency, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
