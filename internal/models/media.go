package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MediaAsset struct {
	bun.BaseModel `bun:"table:media_assets"`

	ID         string    `bun:"id,pk" json:"id"`
	EventID    string    `bun:"event_id,notnull" json:"eventId"`
	StorageKey string    `bun:"storage_key,notnull" json:"storageKey"`
	URL        string    `bun:"url,notnull" json:"url"`
	UploadedAt time.Time `bun:"uploaded_at,notnull,default:current_timestamp" json:"uploadedAt"`
}

type SignUploadRequest struct {
	EventID  string `json:"eventId" validate:"required,uuid4"`
	FileName string `json:"fileName" validate:"required,max=255"`
	FileType string `json:"fileType" validate:"required"`
}

type SignUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

type CompleteUploadRequest struct {
	EventID string `json:"eventId" validate:"required,uuid4"`
	Key     string `json:"key" validate:"required"`
}
