package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"datasoph/internal/models"
)

// UploadRecord is one row of the upload audit trail.
type UploadRecord struct {
	ID         string    `json:"file_id"`
	UserID     string    `json:"user_id"`
	FileName   string    `json:"file_name"`
	StoredPath string    `json:"-"`
	FileType   string    `json:"file_type"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Repo reads and writes upload records.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// InsertUpload records a stored file for the given user with the given TTL.
func (r *Repo) InsertUpload(ctx context.Context, userID string, f models.UploadedFile, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO uploads (id, user_id, file_name, stored_path, file_type, mime_type, size, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, userID, f.FileName, f.StoredPath, string(f.FileType), f.MimeType, f.Size, now, now.Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("insert upload %s: %w", f.ID, err)
	}
	return nil
}

// GetUpload fetches one upload by id.
func (r *Repo) GetUpload(ctx context.Context, id string) (*UploadRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, file_name, stored_path, file_type, mime_type, size, created_at, expires_at
		FROM uploads WHERE id = ?`, id)
	var rec UploadRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.FileName, &rec.StoredPath,
		&rec.FileType, &rec.MimeType, &rec.Size, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListUploads returns a user's uploads, newest first.
func (r *Repo) ListUploads(ctx context.Context, userID string) ([]UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, file_name, stored_path, file_type, mime_type, size, created_at, expires_at
		FROM uploads WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list uploads for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []UploadRecord
	for rows.Next() {
		var rec UploadRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FileName, &rec.StoredPath,
			&rec.FileType, &rec.MimeType, &rec.Size, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteUpload removes one audit row. The file on disk is the caller's
// concern.
func (r *Repo) DeleteUpload(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	return err
}

// expiredUploads returns rows whose TTL has passed.
func (r *Repo) expiredUploads(ctx context.Context, now time.Time) ([]UploadRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, stored_path FROM uploads WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UploadRecord
	for rows.Next() {
		var rec UploadRecord
		if err := rows.Scan(&rec.ID, &rec.StoredPath); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
