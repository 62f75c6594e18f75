// Package proposal implements the mapping-proposal generator (C8):
// fuzzy + keyword heuristic scoring with optional LLM augmentation,
// producing a machine-generated template draft for files that match no
// existing template.
package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/borderops/ingestor/internal/rowmap"
	"github.com/borderops/ingestor/internal/store"
)

// DefaultMinConfidence is the floor a header/field score must clear to be
// included in a proposal, per spec §4.8.
const DefaultMinConfidence = 0.30

// Metadata is the file origin context attached to a proposal for operator
// review.
type Metadata struct {
	Filename string `json:"filename"`
	Sender   string `json:"sender,omitempty"`
	Subject  string `json:"subject,omitempty"`
}

// Proposal is the heuristic (and optionally LLM-augmented) mapping draft
// for one set of file headers.
type Proposal struct {
	FileID            string             `json:"file_id"`
	CreatedAt         time.Time          `json:"created_at"`
	FileHeaders       []string           `json:"file_headers"`
	ColumnMappings    map[string]string  `json:"column_mappings"`
	ConfidenceScores  map[string]float64 `json:"confidence_scores"`
	Metadata          Metadata           `json:"metadata"`
	Reasoning         string             `json:"reasoning,omitempty"`
}

// Generator computes proposals and persists them alongside the file.
type Generator struct {
	proposalsDir  string
	minConfidence float64
	llm           *llmClient // nil disables LLM augmentation
	log           *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithMinConfidence overrides DefaultMinConfidence.
func WithMinConfidence(v float64) Option {
	return func(g *Generator) { g.minConfidence = v }
}

// WithLLM enables the optional LLM augmentation path, attempted before the
// heuristic on every call; any failure falls through to the heuristic
// silently.
func WithLLM(apiKey, model string, timeout time.Duration) Option {
	return func(g *Generator) {
		if apiKey == "" {
			return
		}
		g.llm = newLLMClient(apiKey, model, timeout)
	}
}

// New builds a Generator that writes proposal JSON under proposalsDir.
func New(proposalsDir string, log *slog.Logger, opts ...Option) (*Generator, error) {
	if err := os.MkdirAll(proposalsDir, 0o755); err != nil {
		return nil, fmt.Errorf("proposal: create dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	g := &Generator{proposalsDir: proposalsDir, minConfidence: DefaultMinConfidence, log: log}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate computes a Proposal for headers, trying the LLM path first (if
// configured) and falling through to the heuristic on any failure.
func (g *Generator) Generate(ctx context.Context, headers []string, meta Metadata) Proposal {
	if g.llm != nil {
		if p, err := g.llm.suggest(ctx, headers, meta, g.minConfidence); err == nil {
			return p
		} else {
			g.log.Warn("proposal: llm augmentation failed, falling back to heuristic", "error", err)
		}
	}
	return heuristic(headers, meta, g.minConfidence)
}

// heuristic implements the greedy keyword+fuzzy assignment of spec §4.8:
// headers are scanned in order, each claiming the highest-scoring
// unassigned canonical field whose score clears minConfidence.
func heuristic(headers []string, meta Metadata, minConfidence float64) Proposal {
	claimed := make(map[string]bool, len(rowmap.CanonicalFields()))
	mappings := make(map[string]string)
	scores := make(map[string]float64)

	for _, h := range headers {
		bestField := ""
		bestScore := 0.0
		for _, field := range rowmap.CanonicalFields() {
			if claimed[field] {
				continue
			}
			s := fieldScore(h, field)
			if s > bestScore {
				bestScore = s
				bestField = field
			}
		}
		if bestField != "" && bestScore >= minConfidence {
			mappings[h] = bestField
			scores[h] = bestScore
			claimed[bestField] = true
		}
	}

	return Proposal{
		FileHeaders:      headers,
		ColumnMappings:   mappings,
		ConfidenceScores: scores,
		Metadata:         meta,
	}
}

// ProcessFile computes a proposal, writes it to
// {proposalsDir}/proposal_{fileID}_{utc_ts}.json, and returns the path so
// the caller can update the file's proposal_path and status.
func (g *Generator) ProcessFile(ctx context.Context, fileID pgtype.UUID, headers []string, meta Metadata) (string, Proposal, error) {
	p := g.Generate(ctx, headers, meta)
	p.FileID = store.UUIDString(fileID)
	p.CreatedAt = time.Now().UTC()

	filename := fmt.Sprintf("proposal_%s_%s.json", p.FileID, p.CreatedAt.Format("20060102T150405Z"))
	path := filepath.Join(g.proposalsDir, filename)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", Proposal{}, fmt.Errorf("proposal: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", Proposal{}, fmt.Errorf("proposal: write: %w", err)
	}
	return path, p, nil
}
