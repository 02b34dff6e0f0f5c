package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"imprenta-studio/models"
	"imprenta-studio/repository"
	"imprenta-studio/utils"
)

// ProofService renders the order proof sheet: the quote the customer
// receives with tier, options, surcharges and totals, printed to PDF
// through headless Chrome.
type ProofService struct {
	orderRepo  repository.OrderRepositoryInterface
	uploadRepo repository.DesignUploadRepositoryInterface
	baseURL    string // Base URL for the render endpoint (e.g., "http://localhost:8080")
}

// NewProofService creates a new ProofService
func NewProofService(
	orderRepo repository.OrderRepositoryInterface,
	uploadRepo repository.DesignUploadRepositoryInterface,
	baseURL string,
) *ProofService {
	return &ProofService{
		orderRepo:  orderRepo,
		uploadRepo: uploadRepo,
		baseURL:    baseURL,
	}
}

// detectChromePath detects the path to Chrome/Chromium executable
// Checks CHROME_PATH env var first, then common installation paths
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// proofTemplate is the A4 proof sheet layout. Money values arrive
// preformatted; the template never does arithmetic.
var proofTemplate = template.Must(template.New("proof").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: A4; margin: 0; }
  body { font-family: Helvetica, Arial, sans-serif; margin: 0; padding: 20mm; color: #222; }
  h1 { font-size: 20px; margin-bottom: 2px; }
  .muted { color: #777; font-size: 12px; }
  table { width: 100%; border-collapse: collapse; margin-top: 16px; }
  th, td { text-align: left; padding: 6px 4px; border-bottom: 1px solid #ddd; font-size: 13px; }
  td.amount { text-align: right; }
  tr.total td { font-weight: bold; border-top: 2px solid #222; }
</style>
</head>
<body>
  <h1>Orden #{{.Order.ID}} · {{.Order.ProductSlug}}</h1>
  <p class="muted">Cliente: {{.Order.CustomerName}} · Estado: {{.Order.Status}} · {{.Order.CreatedAt}}</p>
  <table>
    <tr><th>Concepto</th><th></th></tr>
    <tr><td>Cantidad</td><td class="amount">{{.Order.Quantity}} unidades (escala {{.Order.TierQuantity}})</td></tr>
    <tr><td>Precio base</td><td class="amount">{{.BasePrice}}</td></tr>
    {{range .OptionLines}}<tr><td>{{.Label}}: {{.Value}}</td><td class="amount">{{.Note}}</td></tr>
    {{end}}<tr><td>Opciones</td><td class="amount">{{.OptionsPrice}}</td></tr>
    <tr><td>Subtotal</td><td class="amount">{{.Subtotal}}</td></tr>
    <tr><td>IVA</td><td class="amount">{{.Tax}}</td></tr>
    <tr class="total"><td>Total</td><td class="amount">{{.Total}}</td></tr>
    <tr><td class="muted">Precio por unidad</td><td class="amount muted">{{.PerUnit}}</td></tr>
  </table>
  {{if .Files}}<p class="muted">Archivos de diseño: {{range .Files}}{{.FileName}} {{end}}</p>{{end}}
</body>
</html>`))

type proofOptionLine struct {
	Label string
	Value string
	Note  string
}

type proofData struct {
	Order        *models.Order
	OptionLines  []proofOptionLine
	BasePrice    string
	OptionsPrice string
	Subtotal     string
	Tax          string
	Total        string
	PerUnit      string
	Files        []models.DesignUpload
}

// RenderProofHTML renders the proof sheet HTML for an order. Served by
// the internal render endpoint that headless Chrome navigates to.
func (s *ProofService) RenderProofHTML(ctx context.Context, orderID int64) ([]byte, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	files, err := s.uploadRepo.ListByOrder(ctx, orderID)
	if err != nil {
		log.Printf("⚠️  RenderProofHTML: Could not list files for order %d: %v", orderID, err)
	}

	var lines []proofOptionLine
	for label, chosen := range order.SelectedOptions {
		value := chosen.Choice
		if value == "" {
			value = fmt.Sprintf("%d", chosen.Amount)
		}
		lines = append(lines, proofOptionLine{Label: label, Value: value})
	}

	data := proofData{
		Order:        order,
		OptionLines:  lines,
		BasePrice:    utils.FormatCOP(order.Pricing.BasePrice),
		OptionsPrice: utils.FormatCOP(order.Pricing.OptionsPrice),
		Subtotal:     utils.FormatCOP(order.Pricing.TotalPrice),
		Tax:          utils.FormatCOP(order.TaxAmount),
		Total:        utils.FormatCOP(order.GrandTotal),
		PerUnit:      utils.FormatPerUnit(order.Pricing.PricePerUnit, 0),
		Files:        files,
	}

	var buf bytes.Buffer
	if err := proofTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render proof template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateProofPDF prints the proof sheet to an A4 PDF with headless
// Chrome.
func (s *ProofService) GenerateProofPDF(ctx context.Context, orderID int64) ([]byte, error) {
	// Fail early on a missing order instead of inside Chrome.
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	chromePath := detectChromePath()
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := fmt.Sprintf("%s/orders/%d/proof/render", s.baseURL, orderID)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(794, 1123), // A4 at 96 DPI
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(500), // Wait for fonts/layout
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).   // 210mm in inches
				WithPaperHeight(11.69). // 297mm in inches
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate proof PDF: %w", err)
	}

	log.Printf("✅ GenerateProofPDF: Order %d proof rendered (%d bytes)", orderID, len(pdfBuf))
	return pdfBuf, nil
}
