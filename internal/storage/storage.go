// Package storage implements the content-addressed file store (C3):
// persist raw uploaded bytes exactly once per distinct content, and bind
// them to a bordereaux_files database row.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/borderops/ingestor/internal/store"
)

// Store persists bordereaux files on disk, content-addressed by SHA-256,
// and mirrors their metadata into the database.
type Store struct {
	basePath string
	pool     *pgxpool.Pool
}

// New builds a Store rooted at basePath. basePath is created if it doesn't
// already exist.
func New(basePath string, pool *pgxpool.Pool) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create base path: %w", err)
	}
	return &Store{basePath: basePath, pool: pool}, nil
}

// Metadata is origin information carried alongside the bytes, present for
// mailbox-sourced files and absent (zero value) for direct uploads.
type Metadata struct {
	Sender     string
	Subject    string
	ReceivedAt time.Time
}

// SaveResult reports the outcome of Save.
type SaveResult struct {
	FileID      pgtype.UUID
	Status      string
	IsDuplicate bool
}

// Save computes the SHA-256 of data and either returns the existing file
// (is_duplicate=true, no filesystem write, no status change) or writes a
// new content-addressed file and DB row (is_duplicate=false, status=pending).
func (s *Store) Save(ctx context.Context, data []byte, filename string, meta Metadata) (SaveResult, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	q := store.New(s.pool)

	existing, err := q.GetFileByContentHash(ctx, hash)
	if err == nil {
		return SaveResult{FileID: existing.ID, Status: existing.Status, IsDuplicate: true}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return SaveResult{}, fmt.Errorf("storage: lookup content hash: %w", err)
	}

	storageFilename := fmt.Sprintf("%s_%s_%s", hash[:8], time.Now().UTC().Format("20060102T150405Z"), sanitizeFilename(filename))
	fullPath := filepath.Join(s.basePath, storageFilename)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return SaveResult{}, fmt.Errorf("storage: write file: %w", err)
	}

	senderValue := meta.Sender
	if senderValue == "" {
		senderValue = "web_upload"
	}
	sender := store.NewText(senderValue)

	created, err := q.CreateFile(ctx, store.CreateFileParams{
		ID:          store.NewUUID(),
		Filename:    filename,
		FilePath:    fullPath,
		FileSize:    int64(len(data)),
		MimeType:    store.NewText(detectMimeType(data, filename)),
		ContentHash: hash,
		Status:      store.StatusPending,
		Sender:      sender,
		Subject:     store.NewText(meta.Subject),
		ReceivedAt:  store.NewTimestamptz(meta.ReceivedAt),
	})
	if err != nil {
		// The bytes are already durable on disk; a future save with the same
		// content will reconcile via the content-hash lookup above even if
		// this insert failed (e.g. a racing save won the unique constraint).
		return SaveResult{}, fmt.Errorf("storage: create file row: %w", err)
	}

	return SaveResult{FileID: created.ID, Status: created.Status, IsDuplicate: false}, nil
}

// Delete unlinks the stored file (tolerating an already-absent path) and
// removes its database row; rows and errors cascade via the FK.
func (s *Store) Delete(ctx context.Context, fileID pgtype.UUID) error {
	q := store.New(s.pool)

	f, err := q.GetFileByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("storage: lookup file: %w", err)
	}

	if err := os.Remove(f.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: remove file: %w", err)
	}

	if err := q.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("storage: delete file row: %w", err)
	}
	return nil
}

// Read loads the stored bytes for a file back into memory, for pipeline
// processing.
func (s *Store) Read(ctx context.Context, fileID pgtype.UUID) ([]byte, store.BordereauxFile, error) {
	q := store.New(s.pool)
	f, err := q.GetFileByID(ctx, fileID)
	if err != nil {
		return nil, store.BordereauxFile{}, fmt.Errorf("storage: lookup file: %w", err)
	}
	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		return nil, f, fmt.Errorf("storage: read file: %w", err)
	}
	return data, f, nil
}

// MarkReceived transitions a newly saved file from pending to received, the
// status the mailbox poller sets once an attachment has landed on disk and
// in the database, per the poll-then-receive handoff to batch processing.
func (s *Store) MarkReceived(ctx context.Context, fileID pgtype.UUID) error {
	q := store.New(s.pool)
	return q.UpdateFileStatus(ctx, fileID, store.StatusReceived, pgtype.Text{})
}
