package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"datasoph/internal/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(db)
}

func sampleUpload(id, path string) models.UploadedFile {
	return models.UploadedFile{
		ID:         id,
		FileName:   "sales.csv",
		StoredPath: path,
		FileType:   models.FileTypeTabular,
		Kind:       models.ProcessTabular,
		MimeType:   "text/csv",
		Size:       42,
	}
}

func TestInsertAndGetUpload(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.InsertUpload(ctx, "u1", sampleUpload("f1", "/tmp/f1_sales.csv"), time.Hour); err != nil {
		t.Fatalf("InsertUpload: %v", err)
	}
	rec, err := repo.GetUpload(ctx, "f1")
	if err != nil {
		t.Fatalf("GetUpload: %v", err)
	}
	if rec.UserID != "u1" || rec.FileName != "sales.csv" || rec.StoredPath != "/tmp/f1_sales.csv" {
		t.Errorf("record = %+v", rec)
	}
	if !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Error("expiry not after creation")
	}

	if _, err := repo.GetUpload(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("missing id err = %v, want ErrNoRows", err)
	}
}

func TestListUploadsNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, id := range []string{"a", "b"} {
		f := sampleUpload(id, "/tmp/"+id)
		if err := repo.InsertUpload(ctx, "u1", f, time.Hour); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := repo.InsertUpload(ctx, "other", sampleUpload("c", "/tmp/c"), time.Hour); err != nil {
		t.Fatalf("insert other: %v", err)
	}

	recs, err := repo.ListUploads(ctx, "u1")
	if err != nil {
		t.Fatalf("ListUploads: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d, want 2", len(recs))
	}
	if recs[0].ID != "b" || recs[1].ID != "a" {
		t.Errorf("order = %s, %s", recs[0].ID, recs[1].ID)
	}
}

func TestCleanupExpired(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dir := t.TempDir()
	expired := filepath.Join(dir, "old.csv")
	if err := os.WriteFile(expired, []byte("a\n1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := repo.InsertUpload(ctx, "u1", sampleUpload("old", expired), -time.Minute); err != nil {
		t.Fatalf("insert expired: %v", err)
	}
	if err := repo.InsertUpload(ctx, "u1", sampleUpload("fresh", filepath.Join(dir, "fresh.csv")), time.Hour); err != nil {
		t.Fatalf("insert fresh: %v", err)
	}

	if err := repo.cleanupExpired(ctx); err != nil {
		t.Fatalf("cleanupExpired: %v", err)
	}
	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Error("expired file still on disk")
	}
	if _, err := repo.GetUpload(ctx, "old"); !errors.Is(err, sql.ErrNoRows) {
		t.Error("expired record still present")
	}
	if _, err := repo.GetUpload(ctx, "fresh"); err != nil {
		t.Errorf("fresh record removed: %v", err)
	}
}
