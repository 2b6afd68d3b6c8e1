package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/fwojciec/chatvault"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ chatvault.SaveRecordService = (*SaveRecordService)(nil)

// SaveRecordService implements chatvault.SaveRecordService using SQLite.
type SaveRecordService struct {
	db *DB
}

// NewSaveRecordService creates a new SaveRecordService.
func NewSaveRecordService(db *DB) *SaveRecordService {
	return &SaveRecordService{db: db}
}

// CreateSaveRecord stores a record, assigning ID and CreatedAt.
func (s *SaveRecordService) CreateSaveRecord(ctx context.Context, rec *chatvault.SaveRecord) error {
	if rec.Service == "" {
		return chatvault.Errorf(chatvault.EINVALID, "save record service required")
	}
	if rec.MessageType == "" {
		return chatvault.Errorf(chatvault.EINVALID, "save record message type required")
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO save_records (id, service, title, message_type, method, filename, content_hash, bytes, duplicate, success, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Service, rec.Title, string(rec.MessageType), string(rec.Method), rec.Filename,
		rec.ContentHash, rec.Bytes, rec.Duplicate, rec.Success, rec.Error,
		formatTime(rec.CreatedAt))

	return err
}

// FindSaveRecords returns records matching the filter, newest first.
func (s *SaveRecordService) FindSaveRecords(ctx context.Context, filter chatvault.SaveRecordFilter) ([]*chatvault.SaveRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, service, title, message_type, method, filename, content_hash, bytes, duplicate, success, error, created_at
		FROM save_records WHERE 1=1`)

	if filter.Service != nil {
		query.WriteString(" AND service = ?")
		args = append(args, *filter.Service)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendLimit(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*chatvault.SaveRecord
	for rows.Next() {
		var rec chatvault.SaveRecord
		var messageType, method, createdAt string

		if err := rows.Scan(&rec.ID, &rec.Service, &rec.Title, &messageType, &method, &rec.Filename,
			&rec.ContentHash, &rec.Bytes, &rec.Duplicate, &rec.Success, &rec.Error, &createdAt); err != nil {
			return nil, err
		}

		rec.MessageType = chatvault.MessageType(messageType)
		rec.Method = chatvault.SaveMethod(method)
		rec.CreatedAt, err = parseTime(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}
