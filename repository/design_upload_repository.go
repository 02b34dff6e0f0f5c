package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"imprenta-studio/db"
	"imprenta-studio/models"
)

// ErrUploadNotFound is returned when no design upload matches the id
var ErrUploadNotFound = errors.New("design upload not found")

// DesignUploadRepository handles database operations for print-ready
// design files attached to orders
type DesignUploadRepository struct{}

// NewDesignUploadRepository creates a new DesignUploadRepository
func NewDesignUploadRepository() *DesignUploadRepository {
	return &DesignUploadRepository{}
}

// Ensure DesignUploadRepository implements DesignUploadRepositoryInterface
var _ DesignUploadRepositoryInterface = (*DesignUploadRepository)(nil)

// Insert records an uploaded design file
func (r *DesignUploadRepository) Insert(ctx context.Context, upload *models.DesignUpload) (*models.DesignUpload, error) {
	query := `
		INSERT INTO design_uploads (order_id, file_name, drive_file_id, mime_type, size_bytes, has_preview, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`
	err := db.DB.QueryRowContext(ctx, query,
		upload.OrderID, upload.FileName, upload.DriveFileID,
		upload.MimeType, upload.SizeBytes, upload.HasPreview,
	).Scan(&upload.ID, &upload.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert design upload: %w", err)
	}
	return upload, nil
}

// ListByOrder retrieves all design files attached to an order
func (r *DesignUploadRepository) ListByOrder(ctx context.Context, orderID int64) ([]models.DesignUpload, error) {
	query := `
		SELECT id, order_id, file_name, drive_file_id, mime_type, size_bytes, has_preview, created_at
		FROM design_uploads
		WHERE order_id = $1
		ORDER BY id ASC
	`
	rows, err := db.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query design uploads for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var uploads []models.DesignUpload
	for rows.Next() {
		var u models.DesignUpload
		if err := rows.Scan(&u.ID, &u.OrderID, &u.FileName, &u.DriveFileID, &u.MimeType, &u.SizeBytes, &u.HasPreview, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan design upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// GetByID retrieves one design upload record
func (r *DesignUploadRepository) GetByID(ctx context.Context, id int64) (*models.DesignUpload, error) {
	query := `
		SELECT id, order_id, file_name, drive_file_id, mime_type, size_bytes, has_preview, created_at
		FROM design_uploads
		WHERE id = $1
	`
	var u models.DesignUpload
	err := db.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.OrderID, &u.FileName, &u.DriveFileID, &u.MimeType, &u.SizeBytes, &u.HasPreview, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query design upload %d: %w", id, err)
	}
	return &u, nil
}

// SetHasPreview marks whether an optimized preview exists for the file
func (r *DesignUploadRepository) SetHasPreview(ctx context.Context, id int64, hasPreview bool) error {
	query := `UPDATE design_uploads SET has_preview = $1 WHERE id = $2`
	if _, err := db.DB.ExecContext(ctx, query, hasPreview, id); err != nil {
		return fmt.Errorf("failed to update design upload %d: %w", id, err)
	}
	return nil
}
