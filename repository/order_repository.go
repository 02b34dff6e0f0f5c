package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"imprenta-studio/db"
	"imprenta-studio/models"
)

// ErrOrderNotFound is returned when no order matches the lookup
var ErrOrderNotFound = errors.New("order not found")

// ErrIllegalTransition is returned when a status update does not
// follow pending -> processing -> success | cancel
var ErrIllegalTransition = errors.New("illegal order status transition")

// OrderRepository handles database operations for orders
type OrderRepository struct{}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

// Ensure OrderRepository implements OrderRepositoryInterface
var _ OrderRepositoryInterface = (*OrderRepository)(nil)

// legalTransitions encodes the order status machine
var legalTransitions = map[string]map[string]bool{
	models.OrderStatusPending:    {models.OrderStatusProcessing: true, models.OrderStatusCancel: true},
	models.OrderStatusProcessing: {models.OrderStatusSuccess: true, models.OrderStatusCancel: true},
}

// Create persists an order intent snapshot in status "pending". The
// snapshot's selected options are stored as JSON; the pricing fields
// are denormalized so the charged amounts survive later catalog edits.
func (r *OrderRepository) Create(ctx context.Context, intent *models.OrderIntent, taxAmount int64, customerName, customerEmail, notes string) (*models.Order, error) {
	optionsJSON, err := json.Marshal(intent.SelectedOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal selected options: %w", err)
	}

	grandTotal := intent.Pricing.TotalPrice + taxAmount

	query := `
		INSERT INTO orders (
			product_id, product_slug, status, tier_quantity, quantity,
			selected_options, base_price, options_price, total_price, price_per_unit,
			tax_amount, grand_total, customer_name, customer_email, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	order := &models.Order{
		ProductID:       intent.ProductID,
		ProductSlug:     intent.ProductSlug,
		Status:          models.OrderStatusPending,
		TierQuantity:    intent.TierQuantity,
		Quantity:        intent.Quantity,
		SelectedOptions: intent.SelectedOptions,
		Pricing:         intent.Pricing,
		TaxAmount:       taxAmount,
		GrandTotal:      grandTotal,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		Notes:           notes,
	}

	err = db.DB.QueryRowContext(ctx, query,
		intent.ProductID, intent.ProductSlug, models.OrderStatusPending,
		intent.TierQuantity, intent.Quantity, optionsJSON,
		intent.Pricing.BasePrice, intent.Pricing.OptionsPrice,
		intent.Pricing.TotalPrice, intent.Pricing.PricePerUnit,
		taxAmount, grandTotal, customerName, customerEmail, notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	log.Printf("✅ Create: Order %d persisted (product=%s, total=%d)", order.ID, order.ProductSlug, order.GrandTotal)
	return order, nil
}

// GetByID retrieves one order
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	return r.getByCondition(ctx, "id = $1", id)
}

// GetByPaymentReference retrieves the order attached to a payment
// intent reference
func (r *OrderRepository) GetByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	return r.getByCondition(ctx, "payment_intent_id = $1", reference)
}

func (r *OrderRepository) getByCondition(ctx context.Context, condition string, arg interface{}) (*models.Order, error) {
	query := `
		SELECT id, product_id, product_slug, status, tier_quantity, quantity,
		       selected_options, base_price, options_price, total_price, price_per_unit,
		       tax_amount, grand_total, COALESCE(payment_intent_id, ''),
		       COALESCE(customer_name, ''), COALESCE(customer_email, ''), COALESCE(notes, ''),
		       created_at, updated_at
		FROM orders
		WHERE ` + condition

	var order models.Order
	var optionsJSON []byte
	err := db.DB.QueryRowContext(ctx, query, arg).Scan(
		&order.ID, &order.ProductID, &order.ProductSlug, &order.Status,
		&order.TierQuantity, &order.Quantity, &optionsJSON,
		&order.Pricing.BasePrice, &order.Pricing.OptionsPrice,
		&order.Pricing.TotalPrice, &order.Pricing.PricePerUnit,
		&order.TaxAmount, &order.GrandTotal, &order.PaymentIntentID,
		&order.CustomerName, &order.CustomerEmail, &order.Notes,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &order.SelectedOptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal selected options for order %d: %w", order.ID, err)
		}
	}

	return &order, nil
}

// AttachPaymentIntent records the payment gateway reference on a
// pending order
func (r *OrderRepository) AttachPaymentIntent(ctx context.Context, id int64, reference string) error {
	query := `
		UPDATE orders SET payment_intent_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	result, err := db.DB.ExecContext(ctx, query, reference, id, models.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("failed to attach payment intent to order %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("order %d not found or not pending", id)
	}
	return nil
}

// TransitionStatus moves an order from one status to another,
// rejecting transitions the status machine does not allow. The guard
// is in the WHERE clause so a concurrent transition cannot slip
// through.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id int64, from, to string) error {
	if !legalTransitions[from][to] {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}

	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`
	result, err := db.DB.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update order %d status: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %d is not in status %s", ErrIllegalTransition, id, from)
	}

	log.Printf("✅ TransitionStatus: Order %d moved %s -> %s", id, from, to)
	return nil
}
