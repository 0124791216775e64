package models

import "time"

// PermLevel is the ordinal grant level. Higher levels include lower ones.
type PermLevel int

const (
	PermView  PermLevel = 0
	PermEdit  PermLevel = 1
	PermOwner PermLevel = 2
)

type ApprovalStatus string

const (
	StatusNoneRequired ApprovalStatus = "none_required"
	StatusPending      ApprovalStatus = "pending"
	StatusApproved     ApprovalStatus = "approved"
	StatusRejected     ApprovalStatus = "rejected"
)

type GrantSource string

const (
	SourceDefault   GrantSource = "default"   // owner self-grant at creation
	SourceRequested GrantSource = "requested" // edit-request workflow
	SourceManual    GrantSource = "manual"
)

// AclEntry is an explicit grant overlaying default path visibility.
// A PENDING entry with PermEdit is an edit request; it confers no access
// until approved. REJECTED is terminal.
//
// PendingKey is "<resource>/<grantee>/<level>" while the entry is PENDING
// and NULL afterwards. The unique index over it is what makes concurrent
// duplicate requests collide in the database instead of racing past an
// application-level existence check.
type AclEntry struct {
	ID           string         `gorm:"primaryKey;size:80"`
	ResourceID   string         `gorm:"size:50;index;not null"`
	ResourceType string         `gorm:"size:30;not null;default:question"`
	GranteeType  GranteeType    `gorm:"size:10;not null"`
	GranteeID    string         `gorm:"size:50;index;not null"`
	PermLevel    PermLevel      `gorm:"not null"`
	ScopePath    string         `gorm:"size:500"` // optional narrowing for org grants
	Status       ApprovalStatus `gorm:"size:20;not null;default:none_required;index"`
	Source       GrantSource    `gorm:"size:20;not null;default:manual"`
	RequesterID  *string        `gorm:"size:50"`
	ApproverID   *string        `gorm:"size:50"`
	PendingKey   *string        `gorm:"size:200;uniqueIndex"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GranteeType string

const (
	GranteeUser GranteeType = "user"
	GranteeOrg  GranteeType = "org"
)

// Effective reports whether the entry currently confers access.
func (e *AclEntry) Effective() bool {
	return e.Status == StatusNoneRequired || e.Status == StatusApproved
}

// Terminal reports whether the approval state machine is finished for e.
func (e *AclEntry) Terminal() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}
