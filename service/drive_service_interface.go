package service

import "context"

// DriveServiceInterface defines the contract for Google Drive file
// storage operations on print-ready design files
type DriveServiceInterface interface {
	EnsureOrderFolder(ctx context.Context, orderID int64) (string, error)
	UploadDesignFile(ctx context.Context, folderID, fileName, mimeType string, data []byte) (string, error)
	DownloadFile(fileID string) ([]byte, error)
}
