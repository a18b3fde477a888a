package chapter

import (
	"github.com/gofiber/fiber/v2"
	"github.com/luma-learn/luma-api/database"
	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/services"
	"github.com/luma-learn/luma-api/utils/cache"
	"github.com/luma-learn/luma-api/utils/middleware"
	"github.com/luma-learn/luma-api/utils/response"
	"github.com/luma-learn/luma-api/utils/validation"
	"gorm.io/gorm"
)

// ChapterHandler handles chapter-related requests
type ChapterHandler struct {
	db          *gorm.DB
	validator   *validation.Validator
	ownership   *services.OwnershipService
	revalidator *cache.Revalidator
}

// NewChapterHandler creates a new chapter handler
func NewChapterHandler(db *gorm.DB, revalidator *cache.Revalidator) *ChapterHandler {
	return &ChapterHandler{
		db:          db,
		validator:   validation.NewValidator(),
		ownership:   services.NewOwnershipService(db),
		revalidator: revalidator,
	}
}

// CreateChapterRequest represents the request body for creating a chapter
type CreateChapterRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

// UpdateChapterRequest represents the request body for renaming a chapter
type UpdateChapterRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
}

// CreateChapter handles POST /api/v1/courses/:courseId/chapters
func (h *ChapterHandler) CreateChapter(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownership.AuthorizeCourse(c.Context(), identity.UserID, c.Params("courseId"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to resolve course")
	}

	var req CreateChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Ordinal and insert share a transaction so the reserved position is
	// only visible once the chapter exists.
	var chapter model.Chapter
	err = h.db.Transaction(func(tx *gorm.DB) error {
		position, err := database.NextChapterPosition(tx, course.ID)
		if err != nil {
			return err
		}

		chapter = model.Chapter{
			CourseID: course.ID,
			Title:    req.Title,
			Position: position,
		}
		return tx.Create(&chapter).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create chapter")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), course.ID)

	return response.Created(c, chapter)
}

// UpdateChapter handles PUT /api/v1/chapters/:id
func (h *ChapterHandler) UpdateChapter(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	chapter, err := h.ownership.AuthorizeChapter(c.Context(), identity.UserID, c.Params("id"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Chapter not found")
		}
		return response.InternalServerError(c, "Failed to resolve chapter")
	}

	var req UpdateChapterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.db.Model(chapter).Update("title", req.Title).Error; err != nil {
		return response.InternalServerError(c, "Failed to update chapter")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), chapter.CourseID)

	return response.SuccessWithMessage(c, "Chapter updated successfully", chapter)
}

// DeleteChapter handles DELETE /api/v1/chapters/:id
func (h *ChapterHandler) DeleteChapter(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	chapter, err := h.ownership.AuthorizeChapter(c.Context(), identity.UserID, c.Params("id"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Chapter not found")
		}
		return response.InternalServerError(c, "Failed to resolve chapter")
	}

	if err := h.db.Delete(chapter).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete chapter")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), chapter.CourseID)

	return response.NoContent(c)
}
