package domain

import "time"

// AuditAction tags the kind of mutation recorded in the audit trail.
type AuditAction string

const (
	AuditActionAssign AuditAction = "assign"
	AuditActionStatus AuditAction = "status"
	AuditActionNote   AuditAction = "note"
	AuditActionBulk   AuditAction = "bulk"
)

// ChatAudit is an append-only record of a mutating chat action. Writes are
// best-effort: a failed audit insert never aborts the primary operation.
type ChatAudit struct {
	ID        int64
	CompanyID int64
	ChatID    int64
	UserID    *int64
	Action    AuditAction
	Detail    string
	CreatedAt time.Time
}
