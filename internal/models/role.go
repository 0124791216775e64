package models

import "time"

type RoleTier string

const (
	TierOrdinary    RoleTier = "ordinary"
	TierTenantAdmin RoleTier = "tenant-admin"
)

type Role struct {
	ID          string   `gorm:"primaryKey;size:50"`
	Name        string   `gorm:"size:200;not null"`
	Slug        string   `gorm:"size:200;uniqueIndex;not null"`
	Tier        RoleTier `gorm:"size:20;default:ordinary"`
	CanAuthor   bool     `gorm:"default:false"` // may create questions
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
