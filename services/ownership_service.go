package services

import (
	"context"
	"errors"

	"github.com/luma-learn/luma-api/model"
	"gorm.io/gorm"
)

// OwnershipService answers one question before any authoring mutation:
// does the acting user own the target course, directly or through the
// chapter/lesson hierarchy? Lookups are read-only. A missing entity and a
// foreign entity produce the same ErrNotFoundOrUnauthorized.
type OwnershipService struct {
	db *gorm.DB
}

// NewOwnershipService creates a new ownership service
func NewOwnershipService(db *gorm.DB) *OwnershipService {
	return &OwnershipService{db: db}
}

// AuthorizeCourse resolves a course and checks the actor owns it.
func (s *OwnershipService) AuthorizeCourse(ctx context.Context, actorID, courseID string) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, err
	}
	if course.InstructorID != actorID {
		return nil, ErrNotFoundOrUnauthorized
	}
	return &course, nil
}

// AuthorizeChapter resolves a chapter through its course and checks
// ownership of the course.
func (s *OwnershipService) AuthorizeChapter(ctx context.Context, actorID, chapterID string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := s.db.WithContext(ctx).Preload("Course").First(&chapter, "id = ?", chapterID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, err
	}
	if chapter.Course.InstructorID != actorID {
		return nil, ErrNotFoundOrUnauthorized
	}
	return &chapter, nil
}

// AuthorizeLesson resolves a lesson through chapter and course and checks
// ownership of the course.
func (s *OwnershipService) AuthorizeLesson(ctx context.Context, actorID, lessonID string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := s.db.WithContext(ctx).Preload("Chapter.Course").First(&lesson, "id = ?", lessonID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundOrUnauthorized
		}
		return nil, err
	}
	if lesson.Chapter.Course.InstructorID != actorID {
		return nil, ErrNotFoundOrUnauthorized
	}
	return &lesson, nil
}
