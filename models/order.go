package models

// Order status values. Transitions follow
// pending -> processing -> success | cancel; anything else is illegal.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusSuccess    = "success"
	OrderStatusCancel     = "cancel"
)

// OrderIntent is the immutable snapshot handed to checkout once the
// customer's selection is complete: tier, quantity, chosen options and
// the pricing computed at snapshot time. Further edits to the
// selection never change an already-taken intent.
type OrderIntent struct {
	ProductID       int64           `json:"productId"`
	ProductSlug     string          `json:"productSlug"`
	TierQuantity    int             `json:"tierQuantity"`
	Quantity        int             `json:"quantity"`
	SelectedOptions SelectedOptions `json:"selectedOptions"`
	Pricing         PriceBreakdown  `json:"pricing"`
}

// Order represents a persisted order in the database
type Order struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"productId"`
	ProductSlug     string          `json:"productSlug"`
	Status          string          `json:"status"`
	TierQuantity    int             `json:"tierQuantity"`
	Quantity        int             `json:"quantity"`
	SelectedOptions SelectedOptions `json:"selectedOptions"`
	Pricing         PriceBreakdown  `json:"pricing"`
	TaxAmount       int64           `json:"taxAmount"`
	GrandTotal      int64           `json:"grandTotal"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	CustomerName    string          `json:"customerName,omitempty"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

// SubmitOrderRequest represents the request body for submitting an order.
// Example: {
//   "productSlug": "tarjetas-personales",
//   "tierIndex": 1,
//   "selectedOptions": {"Acabado": {"choice": "brillante"}},
//   "customerName": "Juan Pérez",
//   "customerEmail": "juan@example.com"
// }
type SubmitOrderRequest struct {
	ProductSlug     string          `json:"productSlug"`
	TierIndex       int             `json:"tierIndex"`
	Quantity        int             `json:"quantity,omitempty"` // optional override, defaults to the tier's quantity
	SelectedOptions SelectedOptions `json:"selectedOptions"`
	CustomerName    string          `json:"customerName,omitempty"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// SubmitOrderResponse is returned after the order intent is persisted
// and the payment intent created. PaymentReference is what the client
// hands to the payment collection UI.
type SubmitOrderResponse struct {
	Order            Order  `json:"order"`
	PaymentReference string `json:"paymentReference"`
}

// ConfirmPaymentRequest represents the payment gateway confirmation
// callback body.
type ConfirmPaymentRequest struct {
	PaymentReference string `json:"paymentReference"`
	Status           string `json:"status"` // "approved" or "declined"
	Signature        string `json:"signature,omitempty"`
}

// QuoteRequest represents the request body for a live price quote on
// the product page. TierIndex is an index into the product's tiers
// sorted ascending by quantity; -1 means no tier chosen yet.
type QuoteRequest struct {
	TierIndex       int             `json:"tierIndex"`
	Quantity        int             `json:"quantity,omitempty"`
	SelectedOptions SelectedOptions `json:"selectedOptions,omitempty"`
}

// QuoteResponse carries the current breakdown plus the live previews
// rendered next to each tier and each option value.
type QuoteResponse struct {
	Breakdown       PriceBreakdown                       `json:"breakdown"`
	TierPreviews    []PriceBreakdown                     `json:"tierPreviews"`
	OptionPreviews  map[string]map[string]PriceBreakdown `json:"optionPreviews,omitempty"`
	CanSubmit       bool                                 `json:"canSubmit"`
	MissingRequired []string                             `json:"missingRequired,omitempty"`
}

// ProductDetailResponse is the product page document: the catalog plus
// tier previews for the empty selection.
type ProductDetailResponse struct {
	Product       Product          `json:"product"`
	TierPreviews  []PriceBreakdown `json:"tierPreviews"`
	DisplayTotals []string         `json:"displayTotals"` // FormatCOP of each tier total
}
