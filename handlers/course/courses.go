package course

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/services"
	"github.com/luma-learn/luma-api/utils/cache"
	"github.com/luma-learn/luma-api/utils/middleware"
	"github.com/luma-learn/luma-api/utils/response"
	"github.com/luma-learn/luma-api/utils/validation"
	"gorm.io/gorm"
)

// PaymentProvisioner registers a paid course with the payment processor
// before the local row exists, so checkout always has a price reference.
type PaymentProvisioner interface {
	CreateProduct(ctx context.Context, title string, description *string) (string, error)
	CreatePrice(ctx context.Context, productID string, amount float64) (string, error)
}

// CourseHandler handles course-related requests
type CourseHandler struct {
	db          *gorm.DB
	validator   *validation.Validator
	ownership   *services.OwnershipService
	users       *services.UserService
	provisioner PaymentProvisioner
	revalidator *cache.Revalidator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, users *services.UserService, provisioner PaymentProvisioner, revalidator *cache.Revalidator) *CourseHandler {
	return &CourseHandler{
		db:          db,
		validator:   validation.NewValidator(),
		ownership:   services.NewOwnershipService(db),
		users:       users,
		provisioner: provisioner,
		revalidator: revalidator,
	}
}

// CreateCourseRequest represents the request body for creating a course
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Price       float64 `json:"price" validate:"gte=0,lte=1000000"`
}

// UpdateCourseRequest represents the request body for updating a course
type UpdateCourseRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Price       float64 `json:"price" validate:"gte=0,lte=1000000"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	// Parse query parameters
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	search := c.Query("search", "")

	// Build query
	query := h.db.Model(&model.Course{})

	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	// Calculate pagination
	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var courses []model.Course
	if err := query.Preload("Instructor").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course model.Course
	err := h.db.Preload("Instructor").
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapters.position ASC")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC")
		}).
		First(&course, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// ListOwnCourses handles GET /api/v1/dashboard/courses
func (h *CourseHandler) ListOwnCourses(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var courses []model.Course
	if err := h.db.Where("instructor_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Success(c, courses)
}

// CreateCourse handles POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	// Parse request body
	var req CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Sanitize before validation so a whitespace-only title fails required
	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeOptional(req.Description)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// The author gets a local instructor row if they have none yet.
	if _, err := h.users.SetRole(c.Context(), identity, model.RoleInstructor); err != nil {
		return response.InternalServerError(c, "Failed to record instructor")
	}

	course := model.Course{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		InstructorID: identity.UserID,
	}

	// Paid courses must exist at the processor before checkout can ever
	// reference them.
	if req.Price > 0 {
		productID, err := h.provisioner.CreateProduct(c.Context(), req.Title, req.Description)
		if err != nil {
			return response.BadGateway(c, "Failed to register course with payment processor", "PAYMENT_SETUP_FAILED")
		}
		priceID, err := h.provisioner.CreatePrice(c.Context(), productID, req.Price)
		if err != nil {
			return response.BadGateway(c, "Failed to register price with payment processor", "PAYMENT_SETUP_FAILED")
		}
		course.StripeProductID = &productID
		course.StripePriceID = &priceID
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), course.ID)

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownership.AuthorizeCourse(c.Context(), identity.UserID, c.Params("id"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to resolve course")
	}

	var req UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Title = validation.SanitizeString(req.Title)
	req.Description = validation.SanitizeOptional(req.Description)

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	// Price changes never touch existing enrollments; they only affect
	// future checkouts.
	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"price":       req.Price,
	}
	if err := h.db.Model(course).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), course.ID)

	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse handles DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	course, err := h.ownership.AuthorizeCourse(c.Context(), identity.UserID, c.Params("id"))
	if err != nil {
		if err == services.ErrNotFoundOrUnauthorized {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to resolve course")
	}

	if err := h.db.Delete(course).Error; err != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}

	h.revalidator.CourseListChanged(c.Context())
	h.revalidator.CourseChanged(c.Context(), course.ID)

	return response.NoContent(c)
}
