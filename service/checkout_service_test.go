package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"imprenta-studio/models"
	"imprenta-studio/pricing"
	"imprenta-studio/repository"
)

// --- fakes ---

type fakeProductRepo struct {
	product *models.Product
}

func (f *fakeProductRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if f.product == nil || f.product.Slug != slug {
		return nil, repository.ErrProductNotFound
	}
	return f.product, nil
}

func (f *fakeProductRepo) ListActive(ctx context.Context, category string) ([]models.Product, error) {
	if f.product == nil {
		return nil, nil
	}
	return []models.Product{*f.product}, nil
}

type fakeOrderRepo struct {
	nextID int64
	orders map[int64]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*models.Order{}}
}

func (f *fakeOrderRepo) Create(ctx context.Context, intent *models.OrderIntent, taxAmount int64, customerName, customerEmail, notes string) (*models.Order, error) {
	f.nextID++
	order := &models.Order{
		ID:              f.nextID,
		ProductID:       intent.ProductID,
		ProductSlug:     intent.ProductSlug,
		Status:          models.OrderStatusPending,
		TierQuantity:    intent.TierQuantity,
		Quantity:        intent.Quantity,
		SelectedOptions: intent.SelectedOptions,
		Pricing:         intent.Pricing,
		TaxAmount:       taxAmount,
		GrandTotal:      intent.Pricing.TotalPrice + taxAmount,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		Notes:           notes,
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) GetByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.PaymentIntentID == reference {
			copied := *order
			return &copied, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeOrderRepo) AttachPaymentIntent(ctx context.Context, id int64, reference string) error {
	order, ok := f.orders[id]
	if !ok || order.Status != models.OrderStatusPending {
		return fmt.Errorf("order %d not found or not pending", id)
	}
	order.PaymentIntentID = reference
	return nil
}

var fakeLegalTransitions = map[string]map[string]bool{
	models.OrderStatusPending:    {models.OrderStatusProcessing: true, models.OrderStatusCancel: true},
	models.OrderStatusProcessing: {models.OrderStatusSuccess: true, models.OrderStatusCancel: true},
}

func (f *fakeOrderRepo) TransitionStatus(ctx context.Context, id int64, from, to string) error {
	if !fakeLegalTransitions[from][to] {
		return repository.ErrIllegalTransition
	}
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return repository.ErrIllegalTransition
	}
	order.Status = to
	return nil
}

type fakeUploadRepo struct {
	nextID  int64
	uploads []*models.DesignUpload
}

func (f *fakeUploadRepo) Insert(ctx context.Context, upload *models.DesignUpload) (*models.DesignUpload, error) {
	f.nextID++
	upload.ID = f.nextID
	f.uploads = append(f.uploads, upload)
	return upload, nil
}

func (f *fakeUploadRepo) ListByOrder(ctx context.Context, orderID int64) ([]models.DesignUpload, error) {
	var out []models.DesignUpload
	for _, u := range f.uploads {
		if u.OrderID == orderID {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUploadRepo) GetByID(ctx context.Context, id int64) (*models.DesignUpload, error) {
	for _, u := range f.uploads {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUploadNotFound
}

func (f *fakeUploadRepo) SetHasPreview(ctx context.Context, id int64, hasPreview bool) error {
	for _, u := range f.uploads {
		if u.ID == id {
			u.HasPreview = hasPreview
			return nil
		}
	}
	return repository.ErrUploadNotFound
}

type fakeDrive struct {
	failUpload bool
	uploaded   []string
}

func (f *fakeDrive) EnsureOrderFolder(ctx context.Context, orderID int64) (string, error) {
	return fmt.Sprintf("folder-%d", orderID), nil
}

func (f *fakeDrive) UploadDesignFile(ctx context.Context, folderID, fileName, mimeType string, data []byte) (string, error) {
	if f.failUpload {
		return "", errors.New("drive quota exceeded")
	}
	f.uploaded = append(f.uploaded, fileName)
	return "drive-" + fileName, nil
}

func (f *fakeDrive) DownloadFile(fileID string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

type fakeGateway struct {
	failCreate bool
	verifyErr  error
	created    int
}

func (f *fakeGateway) CreateIntent(ctx context.Context, order *models.Order) (string, error) {
	if f.failCreate {
		return "", errors.New("gateway unreachable")
	}
	f.created++
	return fmt.Sprintf("pay-%d", order.ID), nil
}

func (f *fakeGateway) VerifyConfirmation(req models.ConfirmPaymentRequest) error {
	return f.verifyErr
}

// --- helpers ---

func testProduct() *models.Product {
	return &models.Product{
		ID:       1,
		Slug:     "volantes-media-carta",
		Name:     "Volantes media carta",
		Currency: "COP",
		IsActive: true,
		Tiers: []models.QuantityTier{
			{Quantity: 100, BasePrice: 50000, PricePerUnit: 500},
			{Quantity: 500, BasePrice: 200000, PricePerUnit: 400},
		},
		Options: []models.ProductOption{
			{
				Label:      "Acabado",
				Kind:       models.OptionKindDropdown,
				IsRequired: true,
				Values: []models.OptionValue{
					{Value: "mate", Label: "Mate", BasePrice: 0},
					{Value: "brillante", Label: "Brillante", BasePrice: 50, PriceByTier: map[string]int64{"500": 30}},
				},
			},
		},
	}
}

type checkoutFixture struct {
	service    *CheckoutService
	orderRepo  *fakeOrderRepo
	uploadRepo *fakeUploadRepo
	drive      *fakeDrive
	gateway    *fakeGateway
}

func newCheckoutFixture() *checkoutFixture {
	orderRepo := newFakeOrderRepo()
	uploadRepo := &fakeUploadRepo{}
	drive := &fakeDrive{}
	gateway := &fakeGateway{}
	productService := NewProductService(&fakeProductRepo{product: testProduct()}, nil)

	return &checkoutFixture{
		service:    NewCheckoutService(productService, orderRepo, uploadRepo, drive, gateway, 1900),
		orderRepo:  orderRepo,
		uploadRepo: uploadRepo,
		drive:      drive,
		gateway:    gateway,
	}
}

func validRequest() *models.SubmitOrderRequest {
	return &models.SubmitOrderRequest{
		ProductSlug:     "volantes-media-carta",
		TierIndex:       1,
		SelectedOptions: models.SelectedOptions{"Acabado": {Choice: "brillante"}},
		CustomerName:    "Juan Pérez",
		CustomerEmail:   "juan@example.com",
	}
}

// --- tests ---

func TestSubmitOrderHappyPath(t *testing.T) {
	fx := newCheckoutFixture()
	files := []DesignFile{{Name: "arte-frente.pdf", MimeType: "application/pdf", Data: []byte("pdf")}}

	resp, err := fx.service.SubmitOrder(context.Background(), validRequest(), files)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	if resp.Order.Status != models.OrderStatusProcessing {
		t.Fatalf("order status = %s, want processing", resp.Order.Status)
	}
	if resp.PaymentReference == "" {
		t.Fatal("expected a payment reference")
	}
	// Tier 1 + brillante: 200000 + 30*500 = 215000, 19% tax = 40850
	if resp.Order.Pricing.TotalPrice != 215000 {
		t.Fatalf("subtotal = %d, want 215000", resp.Order.Pricing.TotalPrice)
	}
	if resp.Order.TaxAmount != 40850 {
		t.Fatalf("tax = %d, want 40850", resp.Order.TaxAmount)
	}
	if resp.Order.GrandTotal != 255850 {
		t.Fatalf("grand total = %d, want 255850", resp.Order.GrandTotal)
	}
	if len(fx.drive.uploaded) != 1 || fx.drive.uploaded[0] != "arte-frente.pdf" {
		t.Fatalf("uploaded files = %v", fx.drive.uploaded)
	}
	uploads, _ := fx.uploadRepo.ListByOrder(context.Background(), resp.Order.ID)
	if len(uploads) != 1 {
		t.Fatalf("expected 1 upload record, got %d", len(uploads))
	}
}

func TestSubmitOrderMissingRequiredOption(t *testing.T) {
	fx := newCheckoutFixture()
	req := validRequest()
	req.SelectedOptions = nil

	_, err := fx.service.SubmitOrder(context.Background(), req, nil)
	var valErr *pricing.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected *pricing.ValidationError, got %v", err)
	}
	if len(valErr.Missing) != 1 || valErr.Missing[0] != "Acabado" {
		t.Fatalf("Missing = %v, want [Acabado]", valErr.Missing)
	}
	if len(fx.orderRepo.orders) != 0 {
		t.Fatal("no order may be persisted when validation fails")
	}
	if fx.gateway.created != 0 {
		t.Fatal("no payment intent may be created when validation fails")
	}
}

func TestSubmitOrderUploadFailureCancelsOrder(t *testing.T) {
	fx := newCheckoutFixture()
	fx.drive.failUpload = true
	files := []DesignFile{{Name: "arte.pdf", MimeType: "application/pdf", Data: []byte("pdf")}}

	_, err := fx.service.SubmitOrder(context.Background(), validRequest(), files)
	if err == nil {
		t.Fatal("expected upload failure to surface")
	}

	// The payment intent was created before the upload; the order must
	// end canceled, never half-placed.
	if len(fx.orderRepo.orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(fx.orderRepo.orders))
	}
	for _, order := range fx.orderRepo.orders {
		if order.Status != models.OrderStatusCancel {
			t.Fatalf("order status = %s, want cancel", order.Status)
		}
	}
}

func TestSubmitOrderGatewayFailureCancelsOrder(t *testing.T) {
	fx := newCheckoutFixture()
	fx.gateway.failCreate = true

	_, err := fx.service.SubmitOrder(context.Background(), validRequest(), nil)
	if err == nil {
		t.Fatal("expected gateway failure to surface")
	}
	for _, order := range fx.orderRepo.orders {
		if order.Status != models.OrderStatusCancel {
			t.Fatalf("order status = %s, want cancel", order.Status)
		}
	}
}

func TestConfirmPayment(t *testing.T) {
	fx := newCheckoutFixture()
	resp, err := fx.service.SubmitOrder(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	order, err := fx.service.ConfirmPayment(context.Background(), &models.ConfirmPaymentRequest{
		PaymentReference: resp.PaymentReference,
		Status:           "approved",
	})
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if order.Status != models.OrderStatusSuccess {
		t.Fatalf("order status = %s, want success", order.Status)
	}

	// A second confirmation is an illegal transition.
	if _, err := fx.service.ConfirmPayment(context.Background(), &models.ConfirmPaymentRequest{
		PaymentReference: resp.PaymentReference,
		Status:           "approved",
	}); err == nil {
		t.Fatal("expected repeated confirmation to fail")
	}
}

func TestConfirmPaymentDeclined(t *testing.T) {
	fx := newCheckoutFixture()
	resp, err := fx.service.SubmitOrder(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	order, err := fx.service.ConfirmPayment(context.Background(), &models.ConfirmPaymentRequest{
		PaymentReference: resp.PaymentReference,
		Status:           "declined",
	})
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if order.Status != models.OrderStatusCancel {
		t.Fatalf("order status = %s, want cancel", order.Status)
	}
}

func TestConfirmPaymentBadSignature(t *testing.T) {
	fx := newCheckoutFixture()
	resp, err := fx.service.SubmitOrder(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}

	fx.gateway.verifyErr = errors.New("signature mismatch")
	if _, err := fx.service.ConfirmPayment(context.Background(), &models.ConfirmPaymentRequest{
		PaymentReference: resp.PaymentReference,
		Status:           "approved",
	}); err == nil {
		t.Fatal("expected verification failure to surface")
	}

	order, _ := fx.orderRepo.GetByID(context.Background(), resp.Order.ID)
	if order.Status != models.OrderStatusProcessing {
		t.Fatalf("order status = %s, want processing (unchanged)", order.Status)
	}
}
