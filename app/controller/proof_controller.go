package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"imprenta-studio/repository"
	"imprenta-studio/service"
)

// ProofController handles HTTP requests for the order proof sheet
type ProofController struct {
	proofService *service.ProofService
}

// NewProofController creates a new ProofController
func NewProofController(proofService *service.ProofService) *ProofController {
	return &ProofController{
		proofService: proofService,
	}
}

// GetProofPDF handles GET /orders/:id/proof
// Renders the order proof sheet to PDF through headless Chrome.
func (c *ProofController) GetProofPDF(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 GetProofPDF: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID, err := orderIDFromPath(r.URL.Path, "/proof")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	pdfData, err := c.proofService.GenerateProofPDF(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, fmt.Sprintf("Order not found: %d", orderID), http.StatusNotFound)
			return
		}
		log.Printf("❌ GetProofPDF: Error generating proof for order %d: %v", orderID, err)
		http.Error(w, fmt.Sprintf("Failed to generate proof: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ GetProofPDF: Proof generated for order %d (%d bytes)", orderID, len(pdfData))

	filename := fmt.Sprintf("proof_order_%d.pdf", orderID)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdfData); err != nil {
		log.Printf("❌ GetProofPDF: Error writing PDF response: %v", err)
	}
}

// RenderProofHTML handles GET /orders/:id/proof/render
// Serves the HTML document that headless Chrome prints to PDF. Also
// usable directly in a browser for a quick look at the proof.
func (c *ProofController) RenderProofHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID, err := orderIDFromPath(r.URL.Path, "/proof/render")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	html, err := c.proofService.RenderProofHTML(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, fmt.Sprintf("Order not found: %d", orderID), http.StatusNotFound)
			return
		}
		log.Printf("❌ RenderProofHTML: Error rendering proof for order %d: %v", orderID, err)
		http.Error(w, fmt.Sprintf("Failed to render proof: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		log.Printf("❌ RenderProofHTML: Error writing HTML response: %v", err)
	}
}
