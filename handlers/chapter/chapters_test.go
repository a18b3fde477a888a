package chapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/utils/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Course{}, &model.Chapter{}, &model.Lesson{}))
	return db
}

func identityMiddleware(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("identity", &middleware.Identity{
			UserID: userID,
			Email:  userID + "@example.com",
		})
		return c.Next()
	}
}

func newTestApp(t *testing.T, db *gorm.DB, userID string) *fiber.App {
	t.Helper()
	handler := NewChapterHandler(db, nil)

	app := fiber.New()
	authed := app.Group("", identityMiddleware(userID))
	authed.Post("/courses/:courseId/chapters", handler.CreateChapter)
	authed.Put("/chapters/:id", handler.UpdateChapter)
	authed.Delete("/chapters/:id", handler.DeleteChapter)
	return app
}

func seedCourse(t *testing.T, db *gorm.DB, instructorID string) *model.Course {
	t.Helper()
	user := model.User{ID: instructorID, Email: instructorID + "@example.com", Role: model.RoleInstructor}
	require.NoError(t, db.Create(&user).Error)
	course := model.Course{Title: "Test Course", InstructorID: instructorID}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func jsonRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCreateChapterAssignsSequentialPositions(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, "inst-1")
	app := newTestApp(t, db, "inst-1")

	for i := 1; i <= 3; i++ {
		resp := jsonRequest(t, app, http.MethodPost, "/courses/"+course.ID+"/chapters", fiber.Map{
			"title": fmt.Sprintf("Chapter %d", i),
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	var chapters []model.Chapter
	require.NoError(t, db.Where("course_id = ?", course.ID).Order("position ASC").Find(&chapters).Error)
	require.Len(t, chapters, 3)
	for i, ch := range chapters {
		assert.EqualValues(t, i+1, ch.Position)
	}
}

func TestCreateChapterByNonOwnerLooksMissing(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, "owner")
	app := newTestApp(t, db, "intruder")

	resp := jsonRequest(t, app, http.MethodPost, "/courses/"+course.ID+"/chapters", fiber.Map{
		"title": "Sneaky Chapter",
	})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.Chapter{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateChapterRename(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, "inst-1")
	chapter := model.Chapter{Title: "Old Name", CourseID: course.ID, Position: 1}
	require.NoError(t, db.Create(&chapter).Error)

	app := newTestApp(t, db, "inst-1")
	resp := jsonRequest(t, app, http.MethodPut, "/chapters/"+chapter.ID, fiber.Map{
		"title": "New Name",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored model.Chapter
	require.NoError(t, db.First(&stored, "id = ?", chapter.ID).Error)
	assert.Equal(t, "New Name", stored.Title)
	assert.EqualValues(t, 1, stored.Position)
}

func TestDeleteChapterKeepsSiblingPositions(t *testing.T) {
	db := newTestDB(t)
	course := seedCourse(t, db, "inst-1")
	app := newTestApp(t, db, "inst-1")

	for i := 1; i <= 3; i++ {
		resp := jsonRequest(t, app, http.MethodPost, "/courses/"+course.ID+"/chapters", fiber.Map{
			"title": fmt.Sprintf("Chapter %d", i),
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	var middle model.Chapter
	require.NoError(t, db.First(&middle, "course_id = ? AND position = ?", course.ID, 2).Error)

	resp := jsonRequest(t, app, http.MethodDelete, "/chapters/"+middle.ID, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// Remaining chapters keep their ordinals; the gap is tolerated.
	var positions []int64
	require.NoError(t, db.Model(&model.Chapter{}).
		Where("course_id = ?", course.ID).
		Order("position ASC").
		Pluck("position", &positions).Error)
	assert.Equal(t, []int64{1, 3}, positions)
}
