package entity

import "time"

// AuditLogEntry records one decision a workflow stage made. Entries are
// immutable once written; corrections are modeled as new entries.
type AuditLogEntry struct {
	ID            int64                  `json:"id,omitempty"`
	SchemaVersion string                 `json:"schema_version"`
	WorkflowID    string                 `json:"workflow_id"`
	Timestamp     time.Time              `json:"timestamp"`
	Agent         string                 `json:"agent"`
	Action        string                 `json:"action"`
	Reasoning     string                 `json:"reasoning"`
	Inputs        map[string]interface{} `json:"inputs,omitempty"`
	Outputs       map[string]interface{} `json:"outputs,omitempty"`
	Confidence    *float64               `json:"confidence,omitempty"`
	SKU           string                 `json:"sku"`
}

// AuditFilter narrows an audit log query. Zero values mean "no constraint".
type AuditFilter struct {
	WorkflowID    string
	Agent         string
	Action        string
	SKU           string
	MinConfidence *float64
	MaxConfidence *float64
	From          time.Time
	To            time.Time
	Limit         int
	Offset        int
	// OldestFirst flips the default newest-first ordering; used for the
	// per-workflow chronological trail.
	OldestFirst bool
}
