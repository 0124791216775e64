package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         int64          `gorm:"primaryKey"`
	ActorID    string         `gorm:"size:50;index"` // empty for system actions
	ActorName  string         `gorm:"size:200"`
	Action     string         `gorm:"size:100;not null"` // e.g. "question.view", "acl.resolve"
	TargetType string         `gorm:"size:50"`
	TargetID   string         `gorm:"size:50;index"`
	Outcome    string         `gorm:"size:20"`
	Detail     string         `gorm:"size:500"`
	Metadata   datatypes.JSON `gorm:"type:json"`
	IP         string         `gorm:"size:64"`
	CreatedAt  time.Time
}
