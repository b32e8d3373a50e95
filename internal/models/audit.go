package models

import "time"

// AuditAction constants represent privileged mutations to be logged.
const (
	AuditActionUpdateRole     = "UPDATE_ROLE"
	AuditActionUpdateStatus   = "UPDATE_STATUS"
	AuditActionUpdatePassword = "UPDATE_PASSWORD"
	AuditActionCreateUser     = "CREATE_USER"
	AuditActionImportUsers    = "IMPORT_USERS"
	AuditActionImportSales    = "IMPORT_SALES"
	AuditActionLogin          = "LOGIN"
)

// AuditLog is an append-only record of a privileged state change. Entries
// are never mutated; only the retention sweep removes them.
type AuditLog struct {
	ID          int64     `db:"id" json:"id"`
	ActorUserID int64     `db:"actor_user_id" json:"actor_user_id"`
	Action      string    `db:"action" json:"action"`
	TableName   string    `db:"table_name" json:"table_name"`
	RecordID    *int64    `db:"record_id" json:"record_id,omitempty"`
	OldValues   string    `db:"old_values" json:"old_values,omitempty"`
	NewValues   string    `db:"new_values" json:"new_values,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
