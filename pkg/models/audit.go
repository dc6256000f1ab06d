package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit trail actions
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
	AuditActionMerge  = "MERGE"
)

// AuditEntry records a single change to a master data record
type AuditEntry struct {
	ID        int64           `db:"id" json:"id"`
	TableName string          `db:"table_name" json:"table_name"`
	RecordID  uuid.UUID       `db:"record_id" json:"record_id"`
	Action    string          `db:"action" json:"action"`
	OldValues json.RawMessage `db:"old_values" json:"old_values,omitempty"`
	NewValues json.RawMessage `db:"new_values" json:"new_values,omitempty"`
	ChangedBy string          `db:"changed_by" json:"changed_by"`
	ChangedAt time.Time       `db:"changed_at" json:"changed_at"`
}
