package store

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// File lifecycle states, per the state machine driven by the pipeline
// orchestrator.
const (
	StatusPending              = "pending"
	StatusReceived              = "received"
	StatusProcessing            = "processing"
	StatusProcessedOK           = "processed_ok"
	StatusProcessedWithErrors   = "processed_with_errors"
	StatusNewTemplateRequired   = "new_template_required"
	StatusFailed                = "failed"
)

// File types a template can target.
const (
	FileTypeClaims   = "claims"
	FileTypePremium  = "premium"
	FileTypeExposure = "exposure"
)

// BordereauxFile is one row per physical file, unique by content hash.
type BordereauxFile struct {
	ID            pgtype.UUID
	Filename      string
	FilePath      string
	FileSize      int64
	MimeType      pgtype.Text
	ContentHash   string
	Status        string
	ErrorMessage  pgtype.Text
	TotalRows     pgtype.Int4
	ProcessedRows pgtype.Int4
	Sender        pgtype.Text
	Subject       pgtype.Text
	ReceivedAt    pgtype.Timestamptz
	ProposalPath  pgtype.Text
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
	ProcessedAt   pgtype.Timestamptz
}

// BordereauxRow is one canonical validated row, owned by a file.
type BordereauxRow struct {
	ID               pgtype.UUID
	FileID           pgtype.UUID
	PolicyNumber     pgtype.Text
	InsuredName      pgtype.Text
	InceptionDate    pgtype.Date
	ExpiryDate       pgtype.Date
	PremiumAmount    pgtype.Numeric
	Currency         pgtype.Text
	ClaimAmount      pgtype.Numeric
	CommissionAmount pgtype.Numeric
	NetPremium       pgtype.Numeric
	BrokerName       pgtype.Text
	ProductType      pgtype.Text
	CoverageType     pgtype.Text
	RiskLocation     pgtype.Text
	RowNumber        int32
	RawData          []byte // JSON snapshot of the source row
	CreatedAt        pgtype.Timestamptz
	UpdatedAt        pgtype.Timestamptz
}

// ValidationError is one rule failure, owned by a file.
type ValidationError struct {
	ID           pgtype.UUID
	FileID       pgtype.UUID
	RowIndex     int32
	ErrorCode    string
	ErrorMessage string
	FieldName    pgtype.Text
	FieldValue   pgtype.Text
	RuleName     string
	CreatedAt    pgtype.Timestamptz
}

// Template is a mapping recipe matched against incoming file headers.
type Template struct {
	ID             pgtype.UUID
	TemplateID     string
	Name           string
	Carrier        pgtype.Text
	FileType       string
	ColumnMappings []byte // JSON object: source header -> canonical field
	Version        pgtype.Text
	ActiveFlag     bool
	Pattern        []byte // reserved JSON, opaque to this layer
	JSONFilePath   pgtype.Text
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}
