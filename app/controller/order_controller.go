package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"imprenta-studio/models"
	"imprenta-studio/pricing"
	"imprenta-studio/repository"
	"imprenta-studio/service"
)

// maxUploadBytes caps the multipart memory buffer for design file
// uploads (32 MB, print-ready PDFs can be large)
const maxUploadBytes = 32 << 20

// OrderController handles HTTP requests for order submission, lookup
// and payment confirmation
type OrderController struct {
	checkoutService *service.CheckoutService
	orderRepo       repository.OrderRepositoryInterface
	uploadRepo      repository.DesignUploadRepositoryInterface
}

// NewOrderController creates a new OrderController
func NewOrderController(
	checkoutService *service.CheckoutService,
	orderRepo repository.OrderRepositoryInterface,
	uploadRepo repository.DesignUploadRepositoryInterface,
) *OrderController {
	return &OrderController{
		checkoutService: checkoutService,
		orderRepo:       orderRepo,
		uploadRepo:      uploadRepo,
	}
}

// SubmitOrder handles POST /orders
// Accepts either a JSON body (no design files yet) or multipart
// form-data with an "order" JSON part and one or more "files" parts.
// Example JSON request:
// POST /orders
// {
//   "productSlug": "tarjetas-personales",
//   "tierIndex": 1,
//   "selectedOptions": {"Acabado": {"choice": "brillante"}},
//   "customerName": "Juan Pérez",
//   "customerEmail": "juan@example.com"
// }
// Example response:
// {
//   "order": {"id": 1, "status": "processing", ...},
//   "paymentReference": "pay-abc123"
// }
func (c *OrderController) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 SubmitOrder: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		log.Printf("❌ SubmitOrder: Method not allowed: %s", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, files, err := c.parseSubmitRequest(r)
	if err != nil {
		log.Printf("❌ SubmitOrder: Failed to parse request: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ProductSlug) == "" {
		log.Printf("❌ SubmitOrder: productSlug is required")
		http.Error(w, "productSlug is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	response, err := c.checkoutService.SubmitOrder(ctx, req, files)
	if err != nil {
		var valErr *pricing.ValidationError
		if errors.As(err, &valErr) {
			log.Printf("❌ SubmitOrder: Incomplete selection, missing: %v", valErr.Missing)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":           "selection is incomplete",
				"missingRequired": valErr.Missing,
			})
			return
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			http.Error(w, fmt.Sprintf("Product not found: %s", req.ProductSlug), http.StatusNotFound)
			return
		}
		log.Printf("❌ SubmitOrder: Error submitting order: %v", err)
		http.Error(w, fmt.Sprintf("Failed to submit order: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ SubmitOrder: Successfully created order id=%d ref=%s", response.Order.ID, response.PaymentReference)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("❌ SubmitOrder: Error encoding response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// parseSubmitRequest decodes the order submission from either a
// multipart form (with design files) or a plain JSON body.
func (c *OrderController) parseSubmitRequest(r *http.Request) (*models.SubmitOrderRequest, []service.DesignFile, error) {
	contentType := r.Header.Get("Content-Type")

	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req models.SubmitOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		return &req, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	orderJSON := r.FormValue("order")
	if orderJSON == "" {
		return nil, nil, fmt.Errorf("order part is required")
	}
	var req models.SubmitOrderRequest
	if err := json.Unmarshal([]byte(orderJSON), &req); err != nil {
		return nil, nil, fmt.Errorf("invalid order part: %w", err)
	}

	var files []service.DesignFile
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
		}
		files = append(files, service.DesignFile{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	return &req, files, nil
}

// GetOrder handles GET /orders/:id
// Returns the order with its design file records.
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID, err := orderIDFromPath(r.URL.Path, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	order, err := c.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, fmt.Sprintf("Order not found: %d", orderID), http.StatusNotFound)
			return
		}
		log.Printf("❌ GetOrder: Error getting order %d: %v", orderID, err)
		http.Error(w, fmt.Sprintf("Failed to get order: %v", err), http.StatusInternalServerError)
		return
	}

	uploads, err := c.uploadRepo.ListByOrder(ctx, orderID)
	if err != nil {
		log.Printf("⚠️ GetOrder: Could not list uploads for order %d: %v", orderID, err)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"order":   order,
		"uploads": uploads,
	}); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ConfirmPayment handles POST /orders/:id/confirm
// Payment gateway confirmation callback. The reference in the body must
// belong to the order in the path.
// Example request:
// POST /orders/1/confirm
// {
//   "paymentReference": "pay-abc123",
//   "status": "approved",
//   "signature": "..."
// }
func (c *OrderController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 ConfirmPayment: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID, err := orderIDFromPath(r.URL.Path, "/confirm")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req models.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ ConfirmPayment: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	existing, err := c.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, fmt.Sprintf("Order not found: %d", orderID), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to get order: %v", err), http.StatusInternalServerError)
		return
	}
	if req.PaymentReference == "" {
		req.PaymentReference = existing.PaymentIntentID
	}
	if req.PaymentReference != existing.PaymentIntentID {
		log.Printf("❌ ConfirmPayment: Reference mismatch for order %d", orderID)
		http.Error(w, "payment reference does not match order", http.StatusBadRequest)
		return
	}

	order, err := c.checkoutService.ConfirmPayment(ctx, &req)
	if err != nil {
		if errors.Is(err, repository.ErrIllegalTransition) {
			log.Printf("❌ ConfirmPayment: Illegal transition for order %d", orderID)
			http.Error(w, "order is not awaiting payment", http.StatusConflict)
			return
		}
		log.Printf("❌ ConfirmPayment: Error confirming order %d: %v", orderID, err)
		http.Error(w, fmt.Sprintf("Failed to confirm payment: %v", err), http.StatusBadRequest)
		return
	}

	log.Printf("✅ ConfirmPayment: Order %d is now %s", order.ID, order.Status)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(order); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// orderIDFromPath extracts the numeric order id from
// /orders/{id}{suffix}
func orderIDFromPath(path, suffix string) (int64, error) {
	idStr := strings.TrimPrefix(path, "/orders/")
	if suffix != "" {
		trimmed := strings.TrimSuffix(idStr, suffix)
		if trimmed == idStr {
			return 0, fmt.Errorf("invalid path format")
		}
		idStr = trimmed
	}
	if idStr == "" || strings.Contains(idStr, "/") {
		return 0, fmt.Errorf("order id parameter is required")
	}
	orderID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid order id parameter: %s", idStr)
	}
	return orderID, nil
}
