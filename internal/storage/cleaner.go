package storage

import (
	"context"
	"log"
	"os"
	"time"
)

const (
	DefaultUploadTTL       = 24 * time.Hour
	DefaultCleanupInterval = time.Hour
)

// StartUploadCleaner periodically deletes expired uploads from disk and from
// the audit table. It returns immediately; the loop stops when ctx is
// cancelled.
func (r *Repo) StartUploadCleaner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	go r.cleanupLoop(ctx, interval)
}

func (r *Repo) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.cleanupExpired(ctx); err != nil {
				log.Printf("cleanup expired uploads: %v", err)
			}
		}
	}
}

func (r *Repo) cleanupExpired(ctx context.Context) error {
	expired, err := r.expiredUploads(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, rec := range expired {
		if err := os.Remove(rec.StoredPath); err != nil && !os.IsNotExist(err) {
			log.Printf("remove upload %s failed: %v", rec.StoredPath, err)
			continue
		}
		if err := r.DeleteUpload(ctx, rec.ID); err != nil {
			log.Printf("delete upload record %s failed: %v", rec.ID, err)
		}
	}
	return nil
}
