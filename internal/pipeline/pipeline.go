// Package pipeline implements the orchestrator (C9): the state machine
// that drives a single file from `received` to a terminal status, per
// spec §4.9.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/borderops/ingestor/internal/fileparse"
	"github.com/borderops/ingestor/internal/ingest"
	"github.com/borderops/ingestor/internal/matcher"
	"github.com/borderops/ingestor/internal/proposal"
	"github.com/borderops/ingestor/internal/rowmap"
	"github.com/borderops/ingestor/internal/store"
	"github.com/borderops/ingestor/internal/templatestore"
	"github.com/borderops/ingestor/internal/validate"
)

// Outcome summarizes one ProcessFile run, for batch aggregation and the
// HTTP reprocess endpoint's response body.
type Outcome struct {
	FileID        string
	Status        string
	TotalRows     int
	ProcessedRows int
	ErrorCount    int
	Message       string
}

// Pipeline wires the components a single process_file run drives: parse
// (C2), match (C5), map (C6), validate (C7), propose (C8), and the
// persistence transaction.
type Pipeline struct {
	pool      *pgxpool.Pool
	templates *templatestore.Store
	proposals *proposal.Generator
	rules     *validate.Rules

	reportsDir string

	locks   *FileLocks
	limiter *ProcessingLimiter
	log     *slog.Logger
}

// New builds a Pipeline. reportsDir may be empty to disable the optional
// validation-report JSON dump.
func New(pool *pgxpool.Pool, templates *templatestore.Store, proposals *proposal.Generator, rules *validate.Rules, reportsDir string, limiter *ProcessingLimiter, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if limiter == nil {
		limiter = NewProcessingLimiter(DefaultMaxConcurrentProcessing, DefaultMaxWaitTime)
	}
	return &Pipeline{
		pool: pool, templates: templates, proposals: proposals, rules: rules,
		reportsDir: reportsDir, locks: NewFileLocks(), limiter: limiter, log: log,
	}
}

// ProcessFile drives fileID through parse -> match -> map -> validate ->
// persist, or, when no template matches, through the proposal path. Status
// transitions monotonically along the edges of spec §4.9; any error in the
// match-through-persist sequence lands the file in `failed` with a
// diagnostic message rather than propagating, per spec §7 policy ("the
// file record itself is retained for inspection and retry").
func (p *Pipeline) ProcessFile(ctx context.Context, fileID pgtype.UUID) (Outcome, error) {
	if err := p.limiter.Acquire(ctx); err != nil {
		return Outcome{}, err
	}
	defer p.limiter.Release()

	key := store.UUIDString(fileID)
	p.locks.Lock(key)
	defer p.locks.Unlock(key)

	q := store.New(p.pool)

	f, err := q.GetFileByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Outcome{}, ingest.ErrNotFound
		}
		return Outcome{}, fmt.Errorf("pipeline: load file: %w", err)
	}

	if err := q.UpdateFileStatus(ctx, fileID, store.StatusProcessing, pgtype.Text{}); err != nil {
		return Outcome{}, fmt.Errorf("pipeline: set processing: %w", err)
	}

	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("read stored file: %w", err))
	}

	table, err := fileparse.Parse(data, f.Filename)
	if err != nil {
		return p.fail(ctx, q, fileID, err)
	}

	fileType := inferFileType(textOf(f.Subject))

	candidates, err := p.templates.ListActive(ctx, fileType)
	if err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("list active templates: %w", err))
	}

	tmpl, ok := matcher.Match(table.Headers, candidates)
	if !ok {
		return p.runProposal(ctx, q, fileID, f, table)
	}

	if keyCount := len(tmpl.ColumnMappings); len(table.Headers) < keyCount {
		p.log.Warn("pipeline: lenient match selected with fewer headers than template keys",
			"file_id", key, "template_id", tmpl.TemplateID, "headers", len(table.Headers), "keys", keyCount)
	}

	return p.runMatched(ctx, q, fileID, table, tmpl)
}

func (p *Pipeline) runProposal(ctx context.Context, q *store.Queries, fileID pgtype.UUID, f store.BordereauxFile, table *fileparse.Table) (Outcome, error) {
	meta := proposal.Metadata{Filename: f.Filename, Sender: textOf(f.Sender), Subject: textOf(f.Subject)}

	path, prop, err := p.proposals.ProcessFile(ctx, fileID, table.Headers, meta)
	if err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("generate proposal: %w", err))
	}

	if err := q.UpdateFileProposal(ctx, fileID, store.StatusNewTemplateRequired, store.NewText(path)); err != nil {
		return Outcome{}, fmt.Errorf("pipeline: record proposal: %w", err)
	}

	return Outcome{
		FileID:  store.UUIDString(fileID),
		Status:  store.StatusNewTemplateRequired,
		Message: fmt.Sprintf("no matching template; proposal written with %d mapped field(s)", len(prop.ColumnMappings)),
	}, nil
}

func (p *Pipeline) runMatched(ctx context.Context, q *store.Queries, fileID pgtype.UUID, table *fileparse.Table, tmpl templatestore.Template) (Outcome, error) {
	canonical := rowmap.Map(table, tmpl)
	validRows, valErrs := validate.Validate(canonical, fileID, p.rules)

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	qtx := q.WithTx(tx)

	if err := qtx.DeleteRowsByFileID(ctx, tx, fileID); err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("clear prior rows: %w", err))
	}
	if err := qtx.DeleteValidationErrorsByFileID(ctx, tx, fileID); err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("clear prior errors: %w", err))
	}

	insertParams := make([]store.InsertRowParams, 0, len(validRows))
	for _, r := range validRows {
		insertParams = append(insertParams, toInsertRowParams(fileID, r))
	}
	if _, err := qtx.InsertRows(ctx, tx, insertParams); err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("insert rows: %w", err))
	}
	if err := qtx.InsertValidationErrors(ctx, tx, valErrs); err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("insert validation errors: %w", err))
	}

	status := store.StatusProcessedOK
	if len(valErrs) > 0 {
		status = store.StatusProcessedWithErrors
	}

	if err := qtx.CompleteFileProcessing(ctx, fileID, status, pgtype.Text{}, int32(len(table.Rows)), int32(len(validRows))); err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("record outcome: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return p.fail(ctx, q, fileID, fmt.Errorf("commit transaction: %w", err))
	}

	p.writeValidationReport(fileID, valErrs)

	return Outcome{
		FileID:        store.UUIDString(fileID),
		Status:        status,
		TotalRows:     len(table.Rows),
		ProcessedRows: len(validRows),
		ErrorCount:    len(valErrs),
	}, nil
}

// fail transitions the file to `failed` with a diagnostic message and
// returns a non-error Outcome: per spec §7, parse/map/persist failures are
// file-level terminal states, not something HTTP callers see as a 5xx.
func (p *Pipeline) fail(ctx context.Context, q *store.Queries, fileID pgtype.UUID, cause error) (Outcome, error) {
	msg := cause.Error()
	if err := q.UpdateFileStatus(ctx, fileID, store.StatusFailed, store.NewText(msg)); err != nil {
		p.log.Error("pipeline: failed recording failed status", "file_id", store.UUIDString(fileID), "error", err)
	}
	p.log.Warn("pipeline: file processing failed", "file_id", store.UUIDString(fileID), "error", msg)
	return Outcome{FileID: store.UUIDString(fileID), Status: store.StatusFailed, Message: msg}, nil
}

// writeValidationReport best-effort dumps the run's errors to
// validation_reports/validation_errors_{file_id}_{utc_ts}.json, mirroring
// the teacher's audit/export JSON writer idiom. Failures are logged, never
// propagated: this is a forensic convenience, not the record of truth
// (ValidationError rows are).
func (p *Pipeline) writeValidationReport(fileID pgtype.UUID, errs []store.InsertValidationErrorParams) {
	if p.reportsDir == "" || len(errs) == 0 {
		return
	}
	if err := os.MkdirAll(p.reportsDir, 0o755); err != nil {
		p.log.Warn("pipeline: failed creating validation reports dir", "error", err)
		return
	}

	name := fmt.Sprintf("validation_errors_%s_%s.json", store.UUIDString(fileID), time.Now().UTC().Format("20060102T150405Z"))
	data, err := json.MarshalIndent(errs, "", "  ")
	if err != nil {
		p.log.Warn("pipeline: failed marshaling validation report", "error", err)
		return
	}
	if err := os.WriteFile(filepath.Join(p.reportsDir, name), data, 0o644); err != nil {
		p.log.Warn("pipeline: failed writing validation report", "error", err)
	}
}

// inferFileType applies spec §4.9/§9's fixed check order: claim, then
// premium, then exposure; first match wins. Returns "" if the subject
// names none of them (or is absent).
func inferFileType(subject string) string {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "claim"):
		return store.FileTypeClaims
	case strings.Contains(s, "premium"):
		return store.FileTypePremium
	case strings.Contains(s, "exposure"):
		return store.FileTypeExposure
	default:
		return ""
	}
}

func textOf(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func toInsertRowParams(fileID pgtype.UUID, r rowmap.CanonicalRow) store.InsertRowParams {
	p := store.InsertRowParams{
		FileID:    fileID,
		RowNumber: int32(r.RowNumber),
		RawData:   r.RawData,
	}
	if r.PolicyNumber != nil {
		p.PolicyNumber = store.NewText(*r.PolicyNumber)
	}
	if r.InsuredName != nil {
		p.InsuredName = store.NewText(*r.InsuredName)
	}
	if r.InceptionDate != nil {
		p.InceptionDate = store.NewDate(*r.InceptionDate)
	}
	if r.ExpiryDate != nil {
		p.ExpiryDate = store.NewDate(*r.ExpiryDate)
	}
	if r.PremiumAmount != nil {
		p.PremiumAmount = store.NewNumericFromFloat(*r.PremiumAmount)
	}
	if r.Currency != nil {
		p.Currency = store.NewText(*r.Currency)
	}
	if r.ClaimAmount != nil {
		p.ClaimAmount = store.NewNumericFromFloat(*r.ClaimAmount)
	}
	if r.CommissionAmount != nil {
		p.CommissionAmount = store.NewNumericFromFloat(*r.CommissionAmount)
	}
	if r.NetPremium != nil {
		p.NetPremium = store.NewNumericFromFloat(*r.NetPremium)
	}
	if r.BrokerName != nil {
		p.BrokerName = store.NewText(*r.BrokerName)
	}
	if r.ProductType != nil {
		p.ProductType = store.NewText(*r.ProductType)
	}
	if r.CoverageType != nil {
		p.CoverageType = store.NewText(*r.CoverageType)
	}
	if r.RiskLocation != nil {
		p.RiskLocation = store.NewText(*r.RiskLocation)
	}
	return p
}
