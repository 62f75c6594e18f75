// Package templatestore is the template repository (C4): CRUD over mapping
// templates with a side-effecting JSON mirror. Every write persists both the
// database row and a sidecar {templates_dir}/{template_id}.json file; on a
// mismatch the database is authoritative.
package templatestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/borderops/ingestor/internal/store"
)

// Template is the API-facing representation of a mapping recipe: the DB
// row's JSON columns decoded into native Go values.
type Template struct {
	ID             pgtype.UUID
	TemplateID     string
	Name           string
	Carrier        string
	FileType       string
	ColumnMappings ColumnMappings
	Version        string
	ActiveFlag     bool
	JSONFilePath   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store is the template repository.
type Store struct {
	pool *pgxpool.Pool
	dir  string
	log  *slog.Logger
}

// New builds a Store that mirrors writes under dir, creating it if absent.
func New(dir string, pool *pgxpool.Pool, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("templatestore: create dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{pool: pool, dir: dir, log: log}, nil
}

// CreateParams is what's needed to register a new template.
type CreateParams struct {
	TemplateID     string
	Name           string
	Carrier        string
	FileType       string
	ColumnMappings ColumnMappings
	Version        string
	ActiveFlag     bool
}

// Create inserts a new template row and writes its JSON sidecar. Sidecar
// write failures are logged, not returned: the DB row is the record of
// truth and the next successful write will reconcile the sidecar.
func (s *Store) Create(ctx context.Context, p CreateParams) (Template, error) {
	mappingJSON, err := json.Marshal(p.ColumnMappings)
	if err != nil {
		return Template{}, fmt.Errorf("templatestore: marshal column mappings: %w", err)
	}

	path := s.sidecarPath(p.TemplateID)

	row, err := store.New(s.pool).CreateTemplate(ctx, store.CreateTemplateParams{
		ID:             store.NewUUID(),
		TemplateID:     p.TemplateID,
		Name:           p.Name,
		Carrier:        store.NewText(p.Carrier),
		FileType:       p.FileType,
		ColumnMappings: mappingJSON,
		Version:        store.NewText(p.Version),
		ActiveFlag:     p.ActiveFlag,
		Pattern:        []byte("{}"),
		JSONFilePath:   store.NewText(path),
	})
	if err != nil {
		return Template{}, fmt.Errorf("templatestore: create: %w", err)
	}

	t, err := fromRow(row)
	if err != nil {
		return Template{}, err
	}

	s.writeSidecar(t)
	return t, nil
}

// UpdateParams overwrites the mutable fields of an existing template.
type UpdateParams struct {
	TemplateID     string
	Name           string
	Carrier        string
	FileType       string
	ColumnMappings ColumnMappings
	Version        string
	ActiveFlag     bool
}

func (s *Store) Update(ctx context.Context, p UpdateParams) (Template, error) {
	mappingJSON, err := json.Marshal(p.ColumnMappings)
	if err != nil {
		return Template{}, fmt.Errorf("templatestore: marshal column mappings: %w", err)
	}

	row, err := store.New(s.pool).UpdateTemplate(ctx, store.UpdateTemplateParams{
		TemplateID:     p.TemplateID,
		Name:           p.Name,
		Carrier:        store.NewText(p.Carrier),
		FileType:       p.FileType,
		ColumnMappings: mappingJSON,
		Version:        store.NewText(p.Version),
		ActiveFlag:     p.ActiveFlag,
		Pattern:        []byte("{}"),
	})
	if err != nil {
		return Template{}, fmt.Errorf("templatestore: update: %w", err)
	}

	t, err := fromRow(row)
	if err != nil {
		return Template{}, err
	}

	s.writeSidecar(t)
	return t, nil
}

// Delete removes both the DB row and the sidecar, tolerating a missing
// sidecar file.
func (s *Store) Delete(ctx context.Context, templateID string) error {
	if err := store.New(s.pool).DeleteTemplate(ctx, templateID); err != nil {
		return fmt.Errorf("templatestore: delete: %w", err)
	}
	if err := os.Remove(s.sidecarPath(templateID)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("templatestore: failed removing sidecar", "template_id", templateID, "error", err)
	}
	return nil
}

// Get fetches a single template by its stable template_id.
func (s *Store) Get(ctx context.Context, templateID string) (Template, error) {
	row, err := store.New(s.pool).GetTemplateByTemplateID(ctx, templateID)
	if err != nil {
		return Template{}, fmt.Errorf("templatestore: get: %w", err)
	}
	return fromRow(row)
}

// ListActive returns active templates, optionally filtered by file_type, in
// creation order.
func (s *Store) ListActive(ctx context.Context, fileType string) ([]Template, error) {
	rows, err := store.New(s.pool).ListActiveTemplates(ctx, fileType)
	if err != nil {
		return nil, fmt.Errorf("templatestore: list active: %w", err)
	}

	out := make([]Template, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			s.log.Warn("templatestore: skipping unreadable template row", "template_id", row.TemplateID, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// LoadAllFromJSON seeds the database at startup from sidecar files not yet
// registered, keyed by template_id.
func (s *Store) LoadAllFromJSON(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("templatestore: read dir: %w", err)
	}

	known, err := store.New(s.pool).ListAllTemplateIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("templatestore: list known template ids: %w", err)
	}

	seeded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.log.Warn("templatestore: failed reading sidecar", "file", entry.Name(), "error", err)
			continue
		}

		var sc sidecarTemplate
		if err := json.Unmarshal(data, &sc); err != nil {
			s.log.Warn("templatestore: failed decoding sidecar", "file", entry.Name(), "error", err)
			continue
		}

		if sc.TemplateID == "" || known[sc.TemplateID] {
			continue
		}

		if _, err := s.Create(ctx, CreateParams{
			TemplateID:     sc.TemplateID,
			Name:           sc.Name,
			Carrier:        sc.Carrier,
			FileType:       sc.FileType,
			ColumnMappings: sc.ColumnMappings,
			Version:        sc.Version,
			ActiveFlag:     sc.ActiveFlag,
		}); err != nil {
			s.log.Warn("templatestore: failed seeding template from sidecar", "template_id", sc.TemplateID, "error", err)
			continue
		}
		seeded++
	}

	return seeded, nil
}

func (s *Store) sidecarPath(templateID string) string {
	return filepath.Join(s.dir, templateID+".json")
}

func (s *Store) writeSidecar(t Template) {
	sc := sidecarTemplate{
		TemplateID:     t.TemplateID,
		Name:           t.Name,
		Carrier:        t.Carrier,
		FileType:       t.FileType,
		ColumnMappings: t.ColumnMappings,
		Version:        t.Version,
		ActiveFlag:     t.ActiveFlag,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}

	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		s.log.Warn("templatestore: failed marshaling sidecar", "template_id", t.TemplateID, "error", err)
		return
	}

	if err := os.WriteFile(s.sidecarPath(t.TemplateID), data, 0o644); err != nil {
		s.log.Warn("templatestore: failed writing sidecar", "template_id", t.TemplateID, "error", err)
	}
}

func fromRow(row store.Template) (Template, error) {
	var mappings ColumnMappings
	if len(row.ColumnMappings) > 0 {
		if err := json.Unmarshal(row.ColumnMappings, &mappings); err != nil {
			return Template{}, fmt.Errorf("templatestore: unmarshal column mappings: %w", err)
		}
	}

	t := Template{
		ID:             row.ID,
		TemplateID:     row.TemplateID,
		Name:           row.Name,
		FileType:       row.FileType,
		ColumnMappings: mappings,
		ActiveFlag:     row.ActiveFlag,
	}
	if row.Carrier.Valid {
		t.Carrier = row.Carrier.String
	}
	if row.Version.Valid {
		t.Version = row.Version.String
	}
	if row.JSONFilePath.Valid {
		t.JSONFilePath = row.JSONFilePath.String
	}
	if row.CreatedAt.Valid {
		t.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		t.UpdatedAt = row.UpdatedAt.Time
	}
	return t, nil
}
