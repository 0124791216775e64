package models

import "time"

type RelationType string

const (
	RelationPrimary   RelationType = "primary"
	RelationTeaching  RelationType = "teaching"
	RelationTemporary RelationType = "temporary"
	RelationPartTime  RelationType = "part-time"
)

// UserOrgBinding attaches a user to an org node for a time window.
// PathSnapshot copies the node's path at bind time so authorization does not
// depend on later tree moves. A user may hold several active bindings at
// once (cross-class teaching).
type UserOrgBinding struct {
	ID            int64        `gorm:"primaryKey"`
	UserID        string       `gorm:"size:50;index:idx_user_org,unique;not null"`
	OrgID         string       `gorm:"size:50;index:idx_user_org,unique;not null"`
	PathSnapshot  string       `gorm:"size:500;not null"`
	RoleID        *string      `gorm:"size:50"`
	RelationType  RelationType `gorm:"size:20;default:primary"`
	EffectiveFrom time.Time
	EffectiveTo   *time.Time `gorm:"index"` // nil = unbounded
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Org  *OrgNode `gorm:"foreignKey:OrgID"`
	Role *Role    `gorm:"foreignKey:RoleID"`
}

// Active reports whether the binding is in effect at t.
func (b *UserOrgBinding) Active(t time.Time) bool {
	return b.EffectiveTo == nil || b.EffectiveTo.After(t)
}
