package models

import "time"

// FileType is the detected format tag for an uploaded file.
type FileType string

const (
	FileTypeTabular FileType = "tabular"
	FileTypePDF     FileType = "pdf"
	FileTypeImage   FileType = "image"
	FileTypeDocx    FileType = "docx"
	FileTypeText    FileType = "text"
)

// ProcessKind selects which extraction path handles a file.
type ProcessKind string

const (
	ProcessTabular ProcessKind = "data"
	ProcessText    ProcessKind = "ocr"
)

// UploadedFile represents a user-uploaded file persisted to the uploads directory.
type UploadedFile struct {
	ID         string      `json:"file_id"`
	FileName   string      `json:"filename"`
	StoredPath string      `json:"stored_path"`
	FileType   FileType    `json:"file_type"`
	Kind       ProcessKind `json:"kind"`
	MimeType   string      `json:"mime_type"`
	Size       int64       `json:"size"`
	UploadedAt time.Time   `json:"uploaded_at"`
}
