package model

import (
	"time"
)

// User roles. A user picks one at onboarding and keeps it.
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
)

// User represents a registered user. The primary key is the subject
// identifier issued by the external identity provider, so no local
// credentials are ever stored. The local Role column is the system of
// record; the provider's role claim is only a first-contact hint.
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(100)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"type:varchar(320);not null" json:"email"`
	Name      *string   `json:"name,omitempty"`
	Role      string    `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`

	// Relationships
	Courses     []Course     `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"-"`
	Enrollments []Enrollment `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsInstructor reports whether the user may author courses.
func (u *User) IsInstructor() bool {
	return u.Role == RoleInstructor
}
