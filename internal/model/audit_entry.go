package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry captures old/new values for every mutation performed by the
// engines. Entries are written behind the request path by the audit worker;
// they are never updated or deleted.
type AuditEntry struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// EntityTable is stored in the table_name column; the Go field cannot be
	// named TableName because that would collide with the TableName method.
	EntityTable string  `gorm:"column:table_name;type:varchar(50);not null;index"`
	Operation   string  `gorm:"type:varchar(20);not null"` // INSERT | UPDATE
	RecordID    string  `gorm:"type:varchar(36);not null;index"`
	OldValues   *string `gorm:"type:jsonb"`
	NewValues   *string `gorm:"type:jsonb"`
	// ActorID is the user id of the caller, or "SYSTEM" for cron-driven writes.
	ActorID   string `gorm:"type:varchar(36);not null"`
	CreatedAt time.Time
}

// TableName overrides GORM's default pluralization (audit_entries is fine,
// but the column "table_name" collides with the struct field otherwise).
func (AuditEntry) TableName() string { return "audit_entries" }
