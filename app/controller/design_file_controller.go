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
	"imprenta-studio/repository"
	"imprenta-studio/service"
)

// DesignFileController handles HTTP requests for artwork uploads and
// their optimized previews
type DesignFileController struct {
	checkoutService *service.CheckoutService
	uploadRepo      repository.DesignUploadRepositoryInterface
	driveService    service.DriveServiceInterface
}

// NewDesignFileController creates a new DesignFileController
func NewDesignFileController(
	checkoutService *service.CheckoutService,
	uploadRepo repository.DesignUploadRepositoryInterface,
	driveService service.DriveServiceInterface,
) *DesignFileController {
	return &DesignFileController{
		checkoutService: checkoutService,
		uploadRepo:      uploadRepo,
		driveService:    driveService,
	}
}

// AttachFile handles POST /orders/:id/files
// Uploads one more design file (multipart "file" part) to an existing
// order, e.g. corrected artwork.
func (c *DesignFileController) AttachFile(w http.ResponseWriter, r *http.Request) {
	log.Printf("📥 AttachFile: Received %s request to %s", r.Method, r.URL.Path)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	orderID, err := orderIDFromPath(r.URL.Path, "/files")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Printf("❌ AttachFile: Invalid multipart form: %v", err)
		http.Error(w, fmt.Sprintf("Invalid multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file part is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("❌ AttachFile: Failed to read file: %v", err)
		http.Error(w, fmt.Sprintf("Failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	ctx := context.Background()
	upload, err := c.checkoutService.AttachDesignFile(ctx, orderID, service.DesignFile{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			http.Error(w, fmt.Sprintf("Order not found: %d", orderID), http.StatusNotFound)
			return
		}
		log.Printf("❌ AttachFile: Error attaching file to order %d: %v", orderID, err)
		http.Error(w, fmt.Sprintf("Failed to attach file: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("✅ AttachFile: File %s attached to order %d as upload %d", header.Filename, orderID, upload.ID)

	response := models.DesignUploadResponse{Upload: *upload}
	if upload.HasPreview {
		response.PreviewURLThumb = fmt.Sprintf("/orders/%d/files/%d/preview?size=thumb", orderID, upload.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// GetPreview handles GET /orders/:id/files/:fileId/preview?size=thumb|medium
// Serves the optimized JPEG preview, generating and caching it from the
// Drive original on a cache miss.
func (c *DesignFileController) GetPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Path format: /orders/{id}/files/{fileId}/preview
	path := strings.TrimPrefix(r.URL.Path, "/orders/")
	parts := strings.Split(path, "/")
	if len(parts) != 4 || parts[1] != "files" || parts[3] != "preview" {
		http.Error(w, "invalid path format", http.StatusBadRequest)
		return
	}

	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid order id parameter", http.StatusBadRequest)
		return
	}
	uploadID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		http.Error(w, "invalid file id parameter", http.StatusBadRequest)
		return
	}

	size := r.URL.Query().Get("size")
	if size != "thumb" && size != "medium" {
		size = "thumb"
	}

	cachePath := service.PreviewCachePath(uploadID, size)
	if service.PreviewCacheExists(cachePath) {
		preview, err := service.ReadPreviewFromCache(cachePath)
		if err == nil {
			log.Printf("✓ GetPreview: Serving cached preview for upload %d (%s)", uploadID, size)
			writePreview(w, preview)
			return
		}
		log.Printf("⚠️ GetPreview: Cache read failed for upload %d, regenerating: %v", uploadID, err)
	}

	ctx := context.Background()
	upload, err := c.uploadRepo.GetByID(ctx, uploadID)
	if err != nil {
		if errors.Is(err, repository.ErrUploadNotFound) {
			http.Error(w, fmt.Sprintf("Upload not found: %d", uploadID), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to get upload: %v", err), http.StatusInternalServerError)
		return
	}
	if upload.OrderID != orderID {
		http.Error(w, "upload does not belong to order", http.StatusNotFound)
		return
	}

	original, err := c.driveService.DownloadFile(upload.DriveFileID)
	if err != nil {
		log.Printf("❌ GetPreview: Failed to download original for upload %d: %v", uploadID, err)
		http.Error(w, fmt.Sprintf("Failed to download original: %v", err), http.StatusInternalServerError)
		return
	}

	preview, err := service.MakeArtworkPreview(original, size)
	if err != nil {
		// PDFs and vector artwork have no raster preview
		log.Printf("⚠️ GetPreview: No preview for upload %d (%s): %v", uploadID, upload.MimeType, err)
		http.Error(w, "No preview available for this file type", http.StatusUnsupportedMediaType)
		return
	}

	if err := service.SavePreviewToCache(cachePath, preview); err != nil {
		log.Printf("⚠️ GetPreview: Failed to cache preview for upload %d: %v", uploadID, err)
	}
	if !upload.HasPreview {
		if err := c.uploadRepo.SetHasPreview(ctx, uploadID, true); err != nil {
			log.Printf("⚠️ GetPreview: Failed to mark upload %d as having a preview: %v", uploadID, err)
		}
	}

	writePreview(w, preview)
}

func writePreview(w http.ResponseWriter, preview []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(preview)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(preview); err != nil {
		log.Printf("❌ GetPreview: Error writing preview response: %v", err)
	}
}
