package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createFileSQL = `
INSERT INTO bordereaux_files
	(id, filename, file_path, file_size, mime_type, content_hash, status, sender, subject, received_at, created_at, updated_at)
VALUES
	($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
RETURNING id, filename, file_path, file_size, mime_type, content_hash, status, error_message,
	total_rows, processed_rows, sender, subject, received_at, proposal_path,
	created_at, updated_at, processed_at
`

// CreateFileParams carries the fields supplied at file intake, including the
// initial Status; everything else (counts, timestamps) is set by the database.
type CreateFileParams struct {
	ID          pgtype.UUID
	Filename    string
	FilePath    string
	FileSize    int64
	MimeType    pgtype.Text
	ContentHash string
	Status      string
	Sender      pgtype.Text
	Subject     pgtype.Text
	ReceivedAt  pgtype.Timestamptz
}

// CreateFile inserts a new BordereauxFile row. Callers are expected to have
// already checked for a content_hash duplicate via GetFileByContentHash;
// the unique constraint on content_hash is the last line of defense against
// a race between the two.
func (q *Queries) CreateFile(ctx context.Context, p CreateFileParams) (BordereauxFile, error) {
	row := q.db.QueryRow(ctx, createFileSQL,
		p.ID, p.Filename, p.FilePath, p.FileSize, p.MimeType, p.ContentHash,
		p.Status, p.Sender, p.Subject, p.ReceivedAt,
	)
	return scanFile(row)
}

const getFileByIDSQL = `
SELECT id, filename, file_path, file_size, mime_type, content_hash, status, error_message,
	total_rows, processed_rows, sender, subject, received_at, proposal_path,
	created_at, updated_at, processed_at
FROM bordereaux_files WHERE id = $1
`

func (q *Queries) GetFileByID(ctx context.Context, id pgtype.UUID) (BordereauxFile, error) {
	return scanFile(q.db.QueryRow(ctx, getFileByIDSQL, id))
}

const getFileByContentHashSQL = `
SELECT id, filename, file_path, file_size, mime_type, content_hash, status, error_message,
	total_rows, processed_rows, sender, subject, received_at, proposal_path,
	created_at, updated_at, processed_at
FROM bordereaux_files WHERE content_hash = $1
`

// GetFileByContentHash is the dedup lookup behind Storage.Save: if it
// returns pgx.ErrNoRows, the content is genuinely new.
func (q *Queries) GetFileByContentHash(ctx context.Context, hash string) (BordereauxFile, error) {
	return scanFile(q.db.QueryRow(ctx, getFileByContentHashSQL, hash))
}

const listFilesByStatusSQL = `
SELECT id, filename, file_path, file_size, mime_type, content_hash, status, error_message,
	total_rows, processed_rows, sender, subject, received_at, proposal_path,
	created_at, updated_at, processed_at
FROM bordereaux_files WHERE status = $1 ORDER BY created_at ASC
`

// ListFilesByStatus is how the batch processor enumerates files in
// `received` state.
func (q *Queries) ListFilesByStatus(ctx context.Context, status string) ([]BordereauxFile, error) {
	rows, err := q.db.Query(ctx, listFilesByStatusSQL, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BordereauxFile
	for rows.Next() {
		f, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const listFilesFilteredSQL = `
SELECT id, filename, file_path, file_size, mime_type, content_hash, status, error_message,
	total_rows, processed_rows, sender, subject, received_at, proposal_path,
	created_at, updated_at, processed_at
FROM bordereaux_files
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

// ListFilesFiltered returns files in creation-descending order, for the
// files listing API: status filters to an exact match when non-empty,
// limit/offset paginate the result.
func (q *Queries) ListFilesFiltered(ctx context.Context, status string, limit, offset int32) ([]BordereauxFile, error) {
	rows, err := q.db.Query(ctx, listFilesFilteredSQL, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BordereauxFile
	for rows.Next() {
		f, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const updateFileStatusSQL = `
UPDATE bordereaux_files
SET status = $2, error_message = $3, updated_at = now()
WHERE id = $1
`

func (q *Queries) UpdateFileStatus(ctx context.Context, id pgtype.UUID, status string, errMsg pgtype.Text) error {
	_, err := q.db.Exec(ctx, updateFileStatusSQL, id, status, errMsg)
	return err
}

const updateFileProposalSQL = `
UPDATE bordereaux_files
SET status = $2, proposal_path = $3, updated_at = now()
WHERE id = $1
`

func (q *Queries) UpdateFileProposal(ctx context.Context, id pgtype.UUID, status string, proposalPath pgtype.Text) error {
	_, err := q.db.Exec(ctx, updateFileProposalSQL, id, status, proposalPath)
	return err
}

const completeFileProcessingSQL = `
UPDATE bordereaux_files
SET status = $2, error_message = $3, total_rows = $4, processed_rows = $5,
	processed_at = now(), updated_at = now()
WHERE id = $1
`

// CompleteFileProcessing records the terminal outcome of a pipeline run.
func (q *Queries) CompleteFileProcessing(ctx context.Context, id pgtype.UUID, status string, errMsg pgtype.Text, totalRows, processedRows int32) error {
	_, err := q.db.Exec(ctx, completeFileProcessingSQL, id, status, errMsg, NewInt4(totalRows), NewInt4(processedRows))
	return err
}

const deleteFileSQL = `DELETE FROM bordereaux_files WHERE id = $1`

// DeleteFile removes the file row; rows, errors, cascade via FK ON DELETE CASCADE.
func (q *Queries) DeleteFile(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteFileSQL, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row pgx.Row) (BordereauxFile, error) {
	return scanFileRow(row)
}

func scanFileRow(row rowScanner) (BordereauxFile, error) {
	var f BordereauxFile
	err := row.Scan(
		&f.ID, &f.Filename, &f.FilePath, &f.FileSize, &f.MimeType, &f.ContentHash,
		&f.Status, &f.ErrorMessage, &f.TotalRows, &f.ProcessedRows, &f.Sender,
		&f.Subject, &f.ReceivedAt, &f.ProposalPath, &f.CreatedAt, &f.UpdatedAt, &f.ProcessedAt,
	)
	return f, err
}
