package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Price bounds for a course, in whole currency units.
const (
	MinCoursePrice = 0
	MaxCoursePrice = 1_000_000
)

// Course is a sellable unit of instructional content owned by one
// instructor. Paid courses carry references to the payment processor's
// product and price objects; free courses leave both nil.
type Course struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Title        string         `gorm:"not null" json:"title"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	Price        float64        `gorm:"not null;default:0" json:"price"`
	InstructorID string         `gorm:"type:varchar(100);not null;index" json:"instructor_id"`

	StripeProductID *string `gorm:"type:varchar(100)" json:"-"`
	StripePriceID   *string `gorm:"type:varchar(100)" json:"-"`

	// ChapterSeq backs atomic ordinal allocation for chapters; it only
	// ever grows, so ordinals never repeat even under concurrent appends.
	ChapterSeq int64 `gorm:"not null;default:0" json:"-"`

	// Relationships
	Instructor  User         `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"instructor,omitempty"`
	Chapters    []Chapter    `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsFree reports whether enrollment requires no payment.
func (c *Course) IsFree() bool {
	return c.Price == 0
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Chapter is an ordered grouping of lessons within a course.
type Chapter struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID  string         `gorm:"type:varchar(36);not null;index" json:"course_id"`
	Title     string         `gorm:"not null" json:"title"`
	Position  int64          `gorm:"not null" json:"position"`

	// LessonSeq backs atomic ordinal allocation for lessons.
	LessonSeq int64 `gorm:"not null;default:0" json:"-"`

	// Relationships
	Course  Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Lessons []Lesson `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Lesson is a single YouTube-backed unit of content within a chapter.
type Lesson struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	ChapterID      string         `gorm:"type:varchar(36);not null;index" json:"chapter_id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    *string        `gorm:"type:text" json:"description,omitempty"`
	YouTubeVideoID string         `gorm:"type:varchar(20);not null" json:"youtube_video_id"`
	Position       int64          `gorm:"not null" json:"position"`

	// Relationships
	Chapter Chapter `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"-"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
