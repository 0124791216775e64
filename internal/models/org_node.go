package models

import "time"

type OrgNodeType string

const (
	OrgTenant  OrgNodeType = "tenant"
	OrgPhase   OrgNodeType = "phase"
	OrgGrade   OrgNodeType = "grade"
	OrgClass   OrgNodeType = "class"
	OrgPrivate OrgNodeType = "private"
	OrgOther   OrgNodeType = "other"
)

// OrgNode is one node of the organizational tree. Path is the serialized
// root-to-node segment sequence, e.g. "/1000/1100/1110", and always ends
// with the node's own ID.
type OrgNode struct {
	ID        string      `gorm:"primaryKey;size:50"`
	Name      string      `gorm:"size:200;not null"`
	Type      OrgNodeType `gorm:"size:20;not null"`
	ParentID  *string     `gorm:"size:50;index"`
	Path      string      `gorm:"size:500;uniqueIndex;not null"`
	Level     int         `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Parent *OrgNode `gorm:"foreignKey:ParentID"`
}
