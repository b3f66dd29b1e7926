package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document through the ingestion pipeline.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// Document represents an uploaded PDF and its ingestion state.
// Identity is the filename plus the upload timestamp; re-uploading the
// same filename produces a new document that replaces the old one.
type Document struct {
	ID         uuid.UUID
	Filename   string
	UploadedAt time.Time
	ByteSize   int64
	PageCount  int
	PageErrors int
	ChunkCount int
	Status     DocumentStatus
	Error      string
}
