package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateTemplateParams carries everything supplied when a template is
// created, either by an operator via the API or by load_all_from_json
// seeding the DB from sidecar files at startup.
type CreateTemplateParams struct {
	ID             pgtype.UUID
	TemplateID     string
	Name           string
	Carrier        pgtype.Text
	FileType       string
	ColumnMappings []byte
	Version        pgtype.Text
	ActiveFlag     bool
	Pattern        []byte
	JSONFilePath   pgtype.Text
}

const createTemplateSQL = `
INSERT INTO templates
	(id, template_id, name, carrier, file_type, column_mappings, version, active_flag, pattern, json_file_path, created_at, updated_at)
VALUES
	($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now(),now())
RETURNING id, template_id, name, carrier, file_type, column_mappings, version, active_flag, pattern, json_file_path, created_at, updated_at
`

func (q *Queries) CreateTemplate(ctx context.Context, p CreateTemplateParams) (Template, error) {
	row := q.db.QueryRow(ctx, createTemplateSQL,
		p.ID, p.TemplateID, p.Name, p.Carrier, p.FileType, p.ColumnMappings,
		p.Version, p.ActiveFlag, p.Pattern, p.JSONFilePath,
	)
	return scanTemplate(row)
}

// UpdateTemplateParams overwrites the mutable fields of an existing
// template, keyed by its stable template_id.
type UpdateTemplateParams struct {
	TemplateID     string
	Name           string
	Carrier        pgtype.Text
	FileType       string
	ColumnMappings []byte
	Version        pgtype.Text
	ActiveFlag     bool
	Pattern        []byte
}

const updateTemplateSQL = `
UPDATE templates
SET name = $2, carrier = $3, file_type = $4, column_mappings = $5, version = $6,
	active_flag = $7, pattern = $8, updated_at = now()
WHERE template_id = $1
RETURNING id, template_id, name, carrier, file_type, column_mappings, version, active_flag, pattern, json_file_path, created_at, updated_at
`

func (q *Queries) UpdateTemplate(ctx context.Context, p UpdateTemplateParams) (Template, error) {
	row := q.db.QueryRow(ctx, updateTemplateSQL,
		p.TemplateID, p.Name, p.Carrier, p.FileType, p.ColumnMappings, p.Version, p.ActiveFlag, p.Pattern,
	)
	return scanTemplate(row)
}

const getTemplateByTemplateIDSQL = `
SELECT id, template_id, name, carrier, file_type, column_mappings, version, active_flag, pattern, json_file_path, created_at, updated_at
FROM templates WHERE template_id = $1
`

func (q *Queries) GetTemplateByTemplateID(ctx context.Context, templateID string) (Template, error) {
	return scanTemplate(q.db.QueryRow(ctx, getTemplateByTemplateIDSQL, templateID))
}

const listActiveTemplatesSQL = `
SELECT id, template_id, name, carrier, file_type, column_mappings, version, active_flag, pattern, json_file_path, created_at, updated_at
FROM templates WHERE active_flag = true ORDER BY created_at ASC
`

const listActiveTemplatesByFileTypeSQL = `
SELECT id, template_id, name, carrier, file_type, column_mappings, version, active_flag, pattern, json_file_path, created_at, updated_at
FROM templates WHERE active_flag = true AND file_type = $1 ORDER BY created_at ASC
`

// ListActiveTemplates returns active templates, oldest-created first so the
// matcher's tie-break (first in scan order = creation order) is a property
// of the query, not something the matcher has to sort for itself.
// fileType filters to that file type when non-empty.
func (q *Queries) ListActiveTemplates(ctx context.Context, fileType string) ([]Template, error) {
	var rows pgx.Rows
	var err error
	if fileType == "" {
		rows, err = q.db.Query(ctx, listActiveTemplatesSQL)
	} else {
		rows, err = q.db.Query(ctx, listActiveTemplatesByFileTypeSQL, fileType)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplateRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const listAllTemplateIDsSQL = `SELECT template_id FROM templates`

// ListAllTemplateIDs supports load_all_from_json's "not yet registered"
// check without pulling every column.
func (q *Queries) ListAllTemplateIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := q.db.Query(ctx, listAllTemplateIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

const deleteTemplateSQL = `DELETE FROM templates WHERE template_id = $1`

func (q *Queries) DeleteTemplate(ctx context.Context, templateID string) error {
	_, err := q.db.Exec(ctx, deleteTemplateSQL, templateID)
	return err
}

func scanTemplate(row pgx.Row) (Template, error) {
	return scanTemplateRow(row)
}

func scanTemplateRow(row rowScanner) (Template, error) {
	var t Template
	err := row.Scan(
		&t.ID, &t.TemplateID, &t.Name, &t.Carrier, &t.FileType, &t.ColumnMappings,
		&t.Version, &t.ActiveFlag, &t.Pattern, &t.JSONFilePath, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
