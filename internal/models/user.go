package models

import "time"

type UserType string

const (
	UserAdmin   UserType = "admin"
	UserTeacher UserType = "teacher"
	UserStudent UserType = "student"
)

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

type User struct {
	ID           string     `gorm:"primaryKey;size:50"`
	Email        string     `gorm:"uniqueIndex;size:255;not null"`
	Name         string     `gorm:"size:200"`
	Type         UserType   `gorm:"size:20;default:student"`
	PasswordHash string     `gorm:"size:255"`
	Status       UserStatus `gorm:"size:16;default:active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Bindings []UserOrgBinding `gorm:"foreignKey:UserID"`
}

// IsSuperAdmin reports the system-level admin flag. It is a property of the
// user record, not of any org binding.
func (u *User) IsSuperAdmin() bool { return u.Type == UserAdmin }
