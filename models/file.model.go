package models

import "gorm.io/gorm"

// File statuses
const (
	FilePending  = "PENDING"
	FileUploaded = "UPLOADED"
)

// File is an uploaded object (video, PDF, image). A row is created in
// PENDING state when the upload URL is issued and flipped to UPLOADED
// once the client confirms the transfer.
type File struct {
	gorm.Model
	UploaderID uint   `json:"uploader_id" gorm:"index;not null"`
	ObjectKey  string `json:"object_key" gorm:"uniqueIndex;not null"`
	Name       string `json:"name" gorm:"not null"`
	Mime       string `json:"mime"`
	Size       int64  `json:"size" gorm:"default:0"`
	Status     string `json:"status" gorm:"default:'PENDING'"` // PENDING, UPLOADED
	URL        string `json:"url"`
}
