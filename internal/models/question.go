package models

import "time"

// Question is the shared editable resource. Content is mutated only through
// the edit operation; rows are never deleted here, only disabled via Enabled.
// ParentID links a fork back to the question it was copied from.
type Question struct {
	ID         string  `gorm:"primaryKey;size:50"`
	Title      string  `gorm:"size:500;not null"`
	Content    string  `gorm:"type:text;not null"`
	Type       string  `gorm:"size:50;not null"`
	Subject    string  `gorm:"size:50;not null;index"`
	Grade      string  `gorm:"size:50;not null;index"`
	Difficulty string  `gorm:"size:20;default:medium"`
	Answer     string  `gorm:"type:text"`
	Analysis   string  `gorm:"type:text"`
	OrgPath    string  `gorm:"size:500;index;not null"`
	OwnerID    string  `gorm:"size:50;index;not null"`
	Enabled    bool    `gorm:"default:true"`
	ParentID   *string `gorm:"size:50;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Owner  *User     `gorm:"foreignKey:OwnerID"`
	Parent *Question `gorm:"foreignKey:ParentID"`
}
