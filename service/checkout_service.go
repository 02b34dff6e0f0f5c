package service

import (
	"context"
	"fmt"
	"log"

	"imprenta-studio/models"
	"imprenta-studio/pricing"
	"imprenta-studio/repository"
)

// PaymentGateway is the external payment collaborator. The shop never
// talks to the payment provider directly beyond this contract: it
// creates a payment intent up front and verifies the provider's
// confirmation callback later.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, order *models.Order) (string, error)
	VerifyConfirmation(req models.ConfirmPaymentRequest) error
}

// DesignFile is an uploaded print-ready file accompanying an order
// submission.
type DesignFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// CheckoutService turns a completed selection into a paid order. The
// ordering contract is strict: (1) persist the order and create the
// payment intent, (2) upload the design files, (3) only after both
// succeed is the order moved to processing so the client may show the
// payment collection UI, (4) on confirmation the order completes. A
// file upload failure after the intent exists cancels the order and
// surfaces the failure; there is no partial-success order.
type CheckoutService struct {
	productService *ProductService
	orderRepo      repository.OrderRepositoryInterface
	uploadRepo     repository.DesignUploadRepositoryInterface
	driveService   DriveServiceInterface
	gateway        PaymentGateway
	taxRateBps     int64
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	productService *ProductService,
	orderRepo repository.OrderRepositoryInterface,
	uploadRepo repository.DesignUploadRepositoryInterface,
	driveService DriveServiceInterface,
	gateway PaymentGateway,
	taxRateBps int64,
) *CheckoutService {
	return &CheckoutService{
		productService: productService,
		orderRepo:      orderRepo,
		uploadRepo:     uploadRepo,
		driveService:   driveService,
		gateway:        gateway,
		taxRateBps:     taxRateBps,
	}
}

// SubmitOrder validates the selection, snapshots it into an order
// intent and runs the checkout ordering contract up to the point where
// payment may be collected. Validation failures return a
// *pricing.ValidationError for the caller to render inline.
func (s *CheckoutService) SubmitOrder(ctx context.Context, req *models.SubmitOrderRequest, files []DesignFile) (*models.SubmitOrderResponse, error) {
	catalog, err := s.productService.GetCatalog(ctx, req.ProductSlug)
	if err != nil {
		return nil, err
	}

	sel := pricing.Selection{
		TierIndex: req.TierIndex,
		Quantity:  req.Quantity,
		Options:   req.SelectedOptions,
	}
	intent, err := catalog.OrderIntent(sel)
	if err != nil {
		return nil, err
	}

	taxed := pricing.ApplyTax(intent.Pricing.TotalPrice, s.taxRateBps)

	order, err := s.orderRepo.Create(ctx, intent, taxed.Tax, req.CustomerName, req.CustomerEmail, req.Notes)
	if err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	paymentRef, err := s.gateway.CreateIntent(ctx, order)
	if err != nil {
		s.cancelOrder(ctx, order.ID, models.OrderStatusPending)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if err := s.orderRepo.AttachPaymentIntent(ctx, order.ID, paymentRef); err != nil {
		s.cancelOrder(ctx, order.ID, models.OrderStatusPending)
		return nil, err
	}
	order.PaymentIntentID = paymentRef

	if err := s.uploadDesignFiles(ctx, order.ID, files); err != nil {
		// The payment intent exists but the artwork does not: the
		// order must not proceed to payment collection.
		log.Printf("❌ SubmitOrder: Upload failed for order %d, canceling: %v", order.ID, err)
		s.cancelOrder(ctx, order.ID, models.OrderStatusPending)
		return nil, fmt.Errorf("design file upload failed: %w", err)
	}

	if err := s.orderRepo.TransitionStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusProcessing); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusProcessing

	log.Printf("✅ SubmitOrder: Order %d ready for payment collection (ref=%s)", order.ID, paymentRef)
	return &models.SubmitOrderResponse{
		Order:            *order,
		PaymentReference: paymentRef,
	}, nil
}

// uploadDesignFiles stores every file in the order's Drive folder and
// records it. The first failure aborts: a half-uploaded order is a
// failed order.
func (s *CheckoutService) uploadDesignFiles(ctx context.Context, orderID int64, files []DesignFile) error {
	if len(files) == 0 {
		return nil
	}

	folderID, err := s.driveService.EnsureOrderFolder(ctx, orderID)
	if err != nil {
		return err
	}

	for _, file := range files {
		fileID, err := s.driveService.UploadDesignFile(ctx, folderID, file.Name, file.MimeType, file.Data)
		if err != nil {
			return err
		}
		if _, err := s.uploadRepo.Insert(ctx, &models.DesignUpload{
			OrderID:     orderID,
			FileName:    file.Name,
			DriveFileID: fileID,
			MimeType:    file.MimeType,
			SizeBytes:   int64(len(file.Data)),
		}); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmPayment handles the payment gateway confirmation callback and
// completes or cancels the order.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, req *models.ConfirmPaymentRequest) (*models.Order, error) {
	if err := s.gateway.VerifyConfirmation(*req); err != nil {
		return nil, fmt.Errorf("payment confirmation rejected: %w", err)
	}

	order, err := s.orderRepo.GetByPaymentReference(ctx, req.PaymentReference)
	if err != nil {
		return nil, err
	}

	target := models.OrderStatusCancel
	if req.Status == "approved" {
		target = models.OrderStatusSuccess
	}
	if err := s.orderRepo.TransitionStatus(ctx, order.ID, models.OrderStatusProcessing, target); err != nil {
		return nil, err
	}
	order.Status = target

	log.Printf("✅ ConfirmPayment: Order %d -> %s", order.ID, target)
	return order, nil
}

// AttachDesignFile uploads one more design file to an existing order,
// e.g. corrected artwork requested by the shop, and generates its
// preview.
func (s *CheckoutService) AttachDesignFile(ctx context.Context, orderID int64, file DesignFile) (*models.DesignUpload, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCancel {
		return nil, fmt.Errorf("order %d is canceled", orderID)
	}

	folderID, err := s.driveService.EnsureOrderFolder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	fileID, err := s.driveService.UploadDesignFile(ctx, folderID, file.Name, file.MimeType, file.Data)
	if err != nil {
		return nil, err
	}

	upload, err := s.uploadRepo.Insert(ctx, &models.DesignUpload{
		OrderID:     orderID,
		FileName:    file.Name,
		DriveFileID: fileID,
		MimeType:    file.MimeType,
		SizeBytes:   int64(len(file.Data)),
	})
	if err != nil {
		return nil, err
	}

	// Preview generation is best-effort; vector or PDF artwork has none.
	if preview, err := MakeArtworkPreview(file.Data, "thumb"); err == nil {
		if err := SavePreviewToCache(PreviewCachePath(upload.ID, "thumb"), preview); err == nil {
			if err := s.uploadRepo.SetHasPreview(ctx, upload.ID, true); err == nil {
				upload.HasPreview = true
			}
		}
	}

	return upload, nil
}

// cancelOrder moves an order to canceled, logging rather than
// propagating a failure: the caller is already returning the original
// error.
func (s *CheckoutService) cancelOrder(ctx context.Context, orderID int64, from string) {
	if err := s.orderRepo.TransitionStatus(ctx, orderID, from, models.OrderStatusCancel); err != nil {
		log.Printf("⚠️  cancelOrder: Failed to cancel order %d: %v", orderID, err)
	}
}
