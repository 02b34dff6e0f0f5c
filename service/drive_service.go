package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService stores customers' print-ready design files in Google
// Drive, one subfolder per order under a configured root folder.
type DriveService struct {
	client       *drive.Service
	rootFolderID string
}

// NewDriveService creates a new DriveService instance
// credentialsPath should be the path to the Service Account JSON file
func NewDriveService(credentialsPath, rootFolderID string) (*DriveService, error) {
	ctx := context.Background()

	// option.WithCredentialsFile automatically handles Service Account authentication
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client:       client,
		rootFolderID: rootFolderID,
	}, nil
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

const folderMimeType = "application/vnd.google-apps.folder"

// EnsureOrderFolder finds or creates the Drive folder for one order's
// design files and returns its id.
func (ds *DriveService) EnsureOrderFolder(ctx context.Context, orderID int64) (string, error) {
	folderName := fmt.Sprintf("order-%d", orderID)

	query := fmt.Sprintf("'%s' in parents and name = '%s' and mimeType = '%s' and trashed=false",
		ds.rootFolderID, folderName, folderMimeType)
	r, err := ds.client.Files.List().
		Q(query).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to look up order folder: %w", err)
	}
	if len(r.Files) > 0 {
		return r.Files[0].Id, nil
	}

	folder, err := ds.client.Files.Create(&drive.File{
		Name:     folderName,
		MimeType: folderMimeType,
		Parents:  []string{ds.rootFolderID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create order folder: %w", err)
	}

	log.Printf("📁 EnsureOrderFolder: Created Drive folder %s for order %d", folder.Id, orderID)
	return folder.Id, nil
}

// UploadDesignFile uploads one print-ready file into an order folder
// and returns the Drive file id.
func (ds *DriveService) UploadDesignFile(ctx context.Context, folderID, fileName, mimeType string, data []byte) (string, error) {
	file, err := ds.client.Files.Create(&drive.File{
		Name:    fileName,
		Parents: []string{folderID},
	}).Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload design file %s: %w", fileName, err)
	}

	log.Printf("✅ UploadDesignFile: Uploaded %s (%d bytes) as %s", fileName, len(data), file.Id)
	return file.Id, nil
}

// DownloadFile retrieves a file's content from Drive
func (ds *DriveService) DownloadFile(fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}
