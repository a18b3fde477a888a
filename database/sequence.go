package database

import (
	"gorm.io/gorm"
)

// Ordinal allocation for chapters and lessons.
//
// Positions used to be assigned as "count siblings + 1", which two
// concurrent appends can both observe and duplicate. Instead each parent
// row carries a monotonically increasing counter column that is bumped
// and read in a single statement, so the store serializes allocation.
// A failed insert after allocation leaves a gap, which is acceptable;
// a duplicate ordinal is not possible.

// NextChapterPosition reserves the next chapter ordinal for a course.
func NextChapterPosition(tx *gorm.DB, courseID string) (int64, error) {
	var position int64
	err := tx.Raw(
		"UPDATE courses SET chapter_seq = chapter_seq + 1 WHERE id = ? RETURNING chapter_seq",
		courseID,
	).Scan(&position).Error
	return position, err
}

// NextLessonPosition reserves the next lesson ordinal for a chapter.
func NextLessonPosition(tx *gorm.DB, chapterID string) (int64, error) {
	var position int64
	err := tx.Raw(
		"UPDATE chapters SET lesson_seq = lesson_seq + 1 WHERE id = ? RETURNING lesson_seq",
		chapterID,
	).Scan(&position).Error
	return position, err
}
