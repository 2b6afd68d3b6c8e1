package chatvault

import (
	"context"
	"time"
)

// SaveRecord is an entry in the save history.
type SaveRecord struct {
	ID          string      `json:"id"`
	Service     string      `json:"service"`
	Title       string      `json:"title"`
	MessageType MessageType `json:"messageType"`
	Method      SaveMethod  `json:"method"`
	Filename    string      `json:"filename"`
	ContentHash string      `json:"contentHash"`
	Bytes       int         `json:"bytes"`
	Duplicate   bool        `json:"duplicate"`
	Success     bool        `json:"success"`
	Error       string      `json:"error"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// SaveRecordService stores the history of save outcomes.
type SaveRecordService interface {
	// CreateSaveRecord stores a record, assigning ID and CreatedAt.
	CreateSaveRecord(ctx context.Context, rec *SaveRecord) error

	// FindSaveRecords returns records matching the filter, newest first.
	FindSaveRecords(ctx context.Context, filter SaveRecordFilter) ([]*SaveRecord, error)
}

// SaveRecordFilter represents a filter for FindSaveRecords.
type SaveRecordFilter struct {
	Service     *string `json:"service"`
	ContentHash *string `json:"contentHash"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
