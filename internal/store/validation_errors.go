package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// InsertValidationErrorParams is one rule failure attached to a source row.
type InsertValidationErrorParams struct {
	FileID       pgtype.UUID
	RowIndex     int32
	ErrorCode    string
	ErrorMessage string
	FieldName    pgtype.Text
	FieldValue   pgtype.Text
	RuleName     string
}

const insertValidationErrorSQL = `
INSERT INTO validation_errors
	(id, file_id, row_index, error_code, error_message, field_name, field_value, rule_name, created_at)
VALUES
	($1,$2,$3,$4,$5,$6,$7,$8,now())
`

// InsertValidationErrors persists every error produced by a single run. Call
// DeleteValidationErrorsByFileID first so a reprocess doesn't duplicate
// stale errors.
func (q *Queries) InsertValidationErrors(ctx context.Context, tx pgx.Tx, errs []InsertValidationErrorParams) error {
	for _, e := range errs {
		_, err := tx.Exec(ctx, insertValidationErrorSQL,
			NewUUID(), e.FileID, e.RowIndex, e.ErrorCode, e.ErrorMessage, e.FieldName, e.FieldValue, e.RuleName,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const listValidationErrorsByFileIDSQL = `
SELECT id, file_id, row_index, error_code, error_message, field_name, field_value, rule_name, created_at
FROM validation_errors WHERE file_id = $1 ORDER BY row_index ASC
`

func (q *Queries) ListValidationErrorsByFileID(ctx context.Context, fileID pgtype.UUID) ([]ValidationError, error) {
	rows, err := q.db.Query(ctx, listValidationErrorsByFileIDSQL, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ValidationError
	for rows.Next() {
		var e ValidationError
		if err := rows.Scan(
			&e.ID, &e.FileID, &e.RowIndex, &e.ErrorCode, &e.ErrorMessage,
			&e.FieldName, &e.FieldValue, &e.RuleName, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const deleteValidationErrorsByFileIDSQL = `DELETE FROM validation_errors WHERE file_id = $1`

func (q *Queries) DeleteValidationErrorsByFileID(ctx context.Context, tx pgx.Tx, fileID pgtype.UUID) error {
	_, err := tx.Exec(ctx, deleteValidationErrorsByFileIDSQL, fileID)
	return err
}
