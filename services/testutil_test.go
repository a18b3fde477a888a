package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/luma-learn/luma-api/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
// cache=shared with a unique name keeps the database alive across the
// pool's connections for the duration of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Chapter{},
		&model.Lesson{},
		&model.Enrollment{},
		&model.WebhookEvent{},
		&model.CronJobLog{},
	))

	return db
}

func createInstructor(t *testing.T, db *gorm.DB, id string) *model.User {
	t.Helper()
	user := &model.User{ID: id, Email: id + "@example.com", Role: model.RoleInstructor}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, instructorID string, price float64, stripePriceID *string) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:         "Test Course",
		Price:         price,
		InstructorID:  instructorID,
		StripePriceID: stripePriceID,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}
