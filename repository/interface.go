package repository

import (
	"context"

	"imprenta-studio/models"
)

// ProductRepositoryInterface defines the contract for product catalog lookups
type ProductRepositoryInterface interface {
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListActive(ctx context.Context, category string) ([]models.Product, error)
}

// OrderRepositoryInterface defines the contract for order persistence.
// Status transitions must follow pending -> processing -> success | cancel.
type OrderRepositoryInterface interface {
	Create(ctx context.Context, intent *models.OrderIntent, taxAmount int64, customerName, customerEmail, notes string) (*models.Order, error)
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*models.Order, error)
	AttachPaymentIntent(ctx context.Context, id int64, reference string) error
	TransitionStatus(ctx context.Context, id int64, from, to string) error
}

// DesignUploadRepositoryInterface defines the contract for print-ready
// design file records
type DesignUploadRepositoryInterface interface {
	Insert(ctx context.Context, upload *models.DesignUpload) (*models.DesignUpload, error)
	ListByOrder(ctx context.Context, orderID int64) ([]models.DesignUpload, error)
	GetByID(ctx context.Context, id int64) (*models.DesignUpload, error)
	SetHasPreview(ctx context.Context, id int64, hasPreview bool) error
}
