package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"imprenta-studio/models"
	"imprenta-studio/pricing"
	"imprenta-studio/repository"
	"imprenta-studio/service"
	"imprenta-studio/utils"
)

// ProductController handles HTTP requests for the product catalog and
// live price quotes
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ListProducts handles GET /products
// Optional query parameter: ?category=papeleria
func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	category := r.URL.Query().Get("category")

	ctx := context.Background()
	products, err := c.productService.ListProducts(ctx, category)
	if err != nil {
		log.Printf("❌ ListProducts: Error listing products: %v", err)
		http.Error(w, fmt.Sprintf("Failed to list products: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(products); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// GetProduct handles GET /products/:slug
// Returns the product with its tiers sorted ascending by quantity plus
// the price preview each tier shows before anything is selected.
// Example response:
// {
//   "product": {...},
//   "tierPreviews": [{"basePrice": 50000, "optionsPrice": 0, "totalPrice": 50000, "pricePerUnit": 500}],
//   "displayTotals": ["$50.000"]
// }
func (c *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/products/")
	if slug == "" || strings.Contains(slug, "/") {
		http.Error(w, "slug parameter is required", http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	catalog, err := c.productService.GetCatalog(ctx, slug)
	if err != nil {
		writeCatalogError(w, "GetProduct", slug, err)
		return
	}

	previews := catalog.TierPreviews(pricing.NoSelection())
	displayTotals := make([]string, len(previews))
	for i, preview := range previews {
		displayTotals[i] = utils.FormatCOP(preview.TotalPrice)
	}

	// Return the validated catalog view: tiers sorted, options indexed
	product := *catalog.Product
	product.Tiers = catalog.Tiers
	product.Options = catalog.Options

	response := models.ProductDetailResponse{
		Product:       product,
		TierPreviews:  previews,
		DisplayTotals: displayTotals,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// Quote handles POST /products/:slug/quote
// Example request:
// POST /products/tarjetas-personales/quote
// {
//   "tierIndex": 1,
//   "selectedOptions": {"Acabado": {"choice": "brillante"}}
// }
// The response carries the current breakdown, the preview shown next to
// every tier and every dropdown/radio value, and whether the selection
// is complete enough to submit.
func (c *ProductController) Quote(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 Quote: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/products/")
	slug = strings.TrimSuffix(slug, "/quote")
	if slug == "" || strings.Contains(slug, "/") {
		http.Error(w, "slug parameter is required", http.StatusBadRequest)
		return
	}

	var req models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Quote: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	catalog, err := c.productService.GetCatalog(ctx, slug)
	if err != nil {
		writeCatalogError(w, "Quote", slug, err)
		return
	}

	sel := pricing.Selection{
		TierIndex: req.TierIndex,
		Quantity:  req.Quantity,
		Options:   req.SelectedOptions,
	}

	optionPreviews := make(map[string]map[string]models.PriceBreakdown)
	for _, opt := range catalog.Options {
		if previews := catalog.OptionPreviews(sel, opt.Label); previews != nil {
			optionPreviews[opt.Label] = previews
		}
	}

	response := models.QuoteResponse{
		Breakdown:       catalog.Price(sel),
		TierPreviews:    catalog.TierPreviews(sel),
		OptionPreviews:  optionPreviews,
		CanSubmit:       catalog.CanSubmit(sel),
		MissingRequired: catalog.MissingRequired(sel),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// writeCatalogError maps product lookup failures to HTTP statuses. A
// product whose pricing data fails validation is unavailable, not
// missing.
func writeCatalogError(w http.ResponseWriter, op, slug string, err error) {
	if errors.Is(err, repository.ErrProductNotFound) {
		log.Printf("❌ %s: Product not found: %s", op, slug)
		http.Error(w, fmt.Sprintf("Product not found: %s", slug), http.StatusNotFound)
		return
	}
	if errors.Is(err, service.ErrProductUnavailable) {
		log.Printf("⚠️ %s: Product %s unavailable: %v", op, slug, err)
		http.Error(w, fmt.Sprintf("Product temporarily unavailable: %s", slug), http.StatusServiceUnavailable)
		return
	}
	log.Printf("❌ %s: Error loading product %s: %v", op, slug, err)
	http.Error(w, fmt.Sprintf("Failed to load product: %v", err), http.StatusInternalServerError)
}
