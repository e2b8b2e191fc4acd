package core

import (
	"context"
	"time"
)

// Audit actions.
const (
	AuditAppend = "append"
	AuditClear  = "clear"
	AuditDrop   = "drop"
)

// AuditRecord describes one change to a room's message log.
type AuditRecord struct {
	Room   string
	Action string
	Entry  *LogEntry
	At     time.Time
}

// AuditSink receives a copy of every message log change. Implementations must not block.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord)
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, AuditRecord) {}

// NopAudit returns a sink that discards records.
func NopAudit() AuditSink {
	return nopAudit{}
}
