// Package audit records sensitive operations. Recording is fire-and-forget:
// a failing sink is logged and swallowed, never surfaced to the caller of
// the primary operation.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"qbank/internal/models"
)

type Event struct {
	ActorID    string
	ActorName  string
	Action     string // e.g. "question.view", "question.fork", "acl.resolve"
	TargetType string
	TargetID   string
	Outcome    string
	Detail     string
	Metadata   map[string]interface{}
	IP         string
}

type Sink interface {
	Record(ctx context.Context, ev Event)
}

// DBSink appends events to the audit_logs table.
type DBSink struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewDBSink(db *gorm.DB, log *zap.Logger) *DBSink {
	return &DBSink{db: db, log: log}
}

func (s *DBSink) Record(ctx context.Context, ev Event) {
	var meta datatypes.JSON
	if len(ev.Metadata) > 0 {
		raw, err := json.Marshal(ev.Metadata)
		if err == nil {
			meta = datatypes.JSON(raw)
		}
	}
	row := models.AuditLog{
		ActorID:    ev.ActorID,
		ActorName:  ev.ActorName,
		Action:     ev.Action,
		TargetType: ev.TargetType,
		TargetID:   ev.TargetID,
		Outcome:    ev.Outcome,
		Detail:     ev.Detail,
		Metadata:   meta,
		IP:         ev.IP,
		CreatedAt:  time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Warn("audit write failed",
			zap.String("action", ev.Action),
			zap.String("target", ev.TargetID),
			zap.Error(err))
	}
}

// NopSink discards events. Used in tests.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) {}
