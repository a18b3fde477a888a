package lesson

import (
	"github.com/gofiber/fiber/v2"
	"github.com/luma-learn/luma-api/database"
	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/services"
	"github.com/luma-learn/luma-api/utils/cache"
	"github.com/luma-learn/luma-api/utils/middleware"
	"github.com/luma-learn/luma-api/utils/response"
	"github.com/luma-learn/luma-api/utils/validation"
	"github.com/luma-learn/luma-api/utils/youtube"
	"gorm.io/gorm"
)

// LessonHandler handles lesson-related requests
type LessonHandler struct {
	db          *gorm.DB
	validator   *validation.Validator
	ownership   *services.OwnershipService
	revalidator *cache.Revalidator
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(db *gorm.DB, revalidator *cache.Revalidator) *LessonHandler {
	return &LessonHandler{
		db:          db,
		validator:   validation.NewValidator(),
		ownership:   services.NewOwnershipService(db),
		revalidator: revalidator,
	}
}

// LessonRequest is the request body for creating or updating a lesson.
// Video accepts a bare YouTube id or any standard YouTube URL.
type LessonRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Video       string  `json:"video" validate:"required"`
}

// CreateLesson handles POST /api/v1/chapters/:chapterId/lessons
func (h *LessonHandler) CreateLesson(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	chapter, err := h.ownership.AuthorizeChapter(c.Context(), identity.UserID, c.Params("chapterId"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Chapter not found")
		}
		return response.InternalServerError(c, "Failed to resolve chapter")
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeOptional(req.Description)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	videoID := youtube.ExtractID(req.Video)
	if videoID == "" {
		return response.UnprocessableEntity(c, "A valid YouTube video id or URL is required", "INVALID_VIDEO")
	}

	var lesson model.Lesson
	err = h.db.Transaction(func(tx *gorm.DB) error {
		position, err := database.NextLessonPosition(tx, chapter.ID)
		if err != nil {
			return err
		}

		lesson = model.Lesson{
			ChapterID:      chapter.ID,
			Title:          req.Title,
			Description:    req.Description,
			YouTubeVideoID: videoID,
			Position:       position,
		}
		return tx.Create(&lesson).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create lesson")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), chapter.CourseID)

	return response.Created(c, lesson)
}

// UpdateLesson handles PUT /api/v1/lessons/:id
func (h *LessonHandler) UpdateLesson(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	lesson, err := h.ownership.AuthorizeLesson(c.Context(), identity.UserID, c.Params("id"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to resolve lesson")
	}

	var req LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeOptional(req.Description)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	videoID := youtube.ExtractID(req.Video)
	if videoID == "" {
		return response.UnprocessableEntity(c, "A valid YouTube video id or URL is required", "INVALID_VIDEO")
	}

	updates := map[string]interface{}{
		"title":             req.Title,
		"description":       req.Description,
		"you_tube_video_id": videoID,
	}
	if err := h.db.Model(lesson).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update lesson")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), lesson.Chapter.CourseID)

	return response.SuccessWithMessage(c, "Lesson updated successfully", lesson)
}

// DeleteLesson handles DELETE /api/v1/lessons/:id
func (h *LessonHandler) DeleteLesson(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	lesson, err := h.ownership.AuthorizeLesson(c.Context(), identity.UserID, c.Params("id"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Lesson not found")
		}
		return response.InternalServerError(c, "Failed to resolve lesson")
	}

	if err := h.db.Delete(lesson).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete lesson")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), lesson.Chapter.CourseID)

	return response.NoContent(c)
}
