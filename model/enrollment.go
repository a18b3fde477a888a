package model

import (
	"time"
)

// Enrollment is the durable grant of a user's access to a course. The
// composite primary key doubles as the uniqueness constraint that closes
// the race between concurrent checkout completions: the second insert for
// the same pair fails at the store and is swallowed as a benign duplicate.
type Enrollment struct {
	UserID     string    `gorm:"primaryKey;type:varchar(100)" json:"user_id"`
	CourseID   string    `gorm:"primaryKey;type:varchar(36)" json:"course_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Enrollment
func (Enrollment) TableName() string {
	return "enrollments"
}
