package models

// DesignUpload represents a print-ready design file attached to an
// order. Files live in Google Drive; the row records the Drive file id
// and whether an optimized preview has been generated.
type DesignUpload struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	FileName    string `json:"fileName"`
	DriveFileID string `json:"driveFileId"`
	MimeType    string `json:"mimeType"`
	SizeBytes   int64  `json:"sizeBytes"`
	HasPreview  bool   `json:"hasPreview"`
	CreatedAt   string `json:"createdAt"`
}

// DesignUploadResponse is returned after a successful artwork upload
type DesignUploadResponse struct {
	Upload          DesignUpload `json:"upload"`
	PreviewURLThumb string       `json:"previewUrlThumb,omitempty"`
}
