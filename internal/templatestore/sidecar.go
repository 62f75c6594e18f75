package templatestore

import "time"

// sidecarTemplate is the on-disk JSON mirror of a Template row. Field names
// match the canonical spelling used in the API layer, not the DB column
// names, since this file is also what an operator might read by hand.
type sidecarTemplate struct {
	TemplateID     string         `json:"template_id"`
	Name           string         `json:"name"`
	Carrier        string         `json:"carrier,omitempty"`
	FileType       string         `json:"file_type"`
	ColumnMappings ColumnMappings `json:"column_mappings"`
	Version        string         `json:"version,omitempty"`
	ActiveFlag     bool           `json:"active_flag"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
