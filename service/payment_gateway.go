package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"

	"imprenta-studio/models"
)

// SignedReferenceGateway is the default PaymentGateway: it issues an
// opaque payment reference the storefront hands to the external
// payment collection widget, and verifies the confirmation callback
// with an HMAC signature over a shared secret. Swapping in a real
// provider means implementing PaymentGateway, nothing else changes.
type SignedReferenceGateway struct {
	secret []byte
}

var _ PaymentGateway = (*SignedReferenceGateway)(nil)

// NewSignedReferenceGateway creates a new SignedReferenceGateway
func NewSignedReferenceGateway(secret string) *SignedReferenceGateway {
	return &SignedReferenceGateway{secret: []byte(secret)}
}

// CreateIntent issues the payment reference for an order
func (g *SignedReferenceGateway) CreateIntent(ctx context.Context, order *models.Order) (string, error) {
	nonce := make([]byte, 8)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate payment reference: %w", err)
	}
	reference := fmt.Sprintf("pay-%d-%s", order.ID, hex.EncodeToString(nonce))
	log.Printf("✓ Payment reference created for order %d: %s", order.ID, reference)
	return reference, nil
}

// VerifyConfirmation checks the HMAC signature on a confirmation
// callback: hex(HMAC-SHA256(secret, reference + "|" + status))
func (g *SignedReferenceGateway) VerifyConfirmation(req models.ConfirmPaymentRequest) error {
	if req.PaymentReference == "" {
		return fmt.Errorf("payment reference is required")
	}
	if req.Status != "approved" && req.Status != "declined" {
		return fmt.Errorf("unknown confirmation status: %s", req.Status)
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(req.PaymentReference + "|" + req.Status))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		return fmt.Errorf("invalid confirmation signature")
	}
	return nil
}
