package webapi

import (
	"time"

	"github.com/borderops/ingestor/internal/store"
	"github.com/borderops/ingestor/internal/templatestore"
)

// fileView is the JSON-facing projection of a BordereauxFile, unwrapping
// pgtype nullable wrappers into plain Go values (empty string/zero instead
// of a {Valid,...} struct) for API clients.
type fileView struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	FileSize      int64      `json:"file_size"`
	MimeType      string     `json:"mime_type,omitempty"`
	ContentHash   string     `json:"content_hash"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	TotalRows     int32      `json:"total_rows"`
	ProcessedRows int32      `json:"processed_rows"`
	Sender        string     `json:"sender,omitempty"`
	Subject       string     `json:"subject,omitempty"`
	ProposalPath  string     `json:"proposal_path,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
}

func toFileView(f store.BordereauxFile) fileView {
	v := fileView{
		ID:          store.UUIDString(f.ID),
		Filename:    f.Filename,
		FileSize:    f.FileSize,
		ContentHash: f.ContentHash,
		Status:      f.Status,
	}
	if f.MimeType.Valid {
		v.MimeType = f.MimeType.String
	}
	if f.ErrorMessage.Valid {
		v.ErrorMessage = f.ErrorMessage.String
	}
	if f.TotalRows.Valid {
		v.TotalRows = f.TotalRows.Int32
	}
	if f.ProcessedRows.Valid {
		v.ProcessedRows = f.ProcessedRows.Int32
	}
	if f.Sender.Valid {
		v.Sender = f.Sender.String
	}
	if f.Subject.Valid {
		v.Subject = f.Subject.String
	}
	if f.ProposalPath.Valid {
		v.ProposalPath = f.ProposalPath.String
	}
	if f.CreatedAt.Valid {
		v.CreatedAt = f.CreatedAt.Time
	}
	if f.UpdatedAt.Valid {
		v.UpdatedAt = f.UpdatedAt.Time
	}
	if f.ProcessedAt.Valid {
		t := f.ProcessedAt.Time
		v.ProcessedAt = &t
	}
	return v
}

// validationErrorView is the JSON-facing projection of a ValidationError.
type validationErrorView struct {
	RowIndex     int32  `json:"row_index"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	FieldName    string `json:"field_name,omitempty"`
	FieldValue   string `json:"field_value,omitempty"`
	RuleName     string `json:"rule_name"`
}

func toValidationErrorView(e store.ValidationError) validationErrorView {
	v := validationErrorView{
		RowIndex:     e.RowIndex,
		ErrorCode:    e.ErrorCode,
		ErrorMessage: e.ErrorMessage,
		RuleName:     e.RuleName,
	}
	if e.FieldName.Valid {
		v.FieldName = e.FieldName.String
	}
	if e.FieldValue.Valid {
		v.FieldValue = e.FieldValue.String
	}
	return v
}

// templateView is the JSON-facing projection of a templatestore.Template.
type templateView struct {
	TemplateID     string                       `json:"template_id"`
	Name           string                       `json:"name"`
	Carrier        string                       `json:"carrier,omitempty"`
	FileType       string                       `json:"file_type"`
	ColumnMappings templatestore.ColumnMappings `json:"column_mappings"`
	Version        string                       `json:"version,omitempty"`
	ActiveFlag     bool                         `json:"active_flag"`
}
