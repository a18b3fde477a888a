package enrollment

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/luma-learn/luma-api/services"
	"github.com/luma-learn/luma-api/utils/middleware"
	"github.com/luma-learn/luma-api/utils/response"
)

// EnrollmentHandler exposes the purchase/enrollment flow
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments *services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// InitiateAccess handles POST /api/v1/courses/:courseId/checkout.
// Free courses enroll immediately; paid courses answer with the
// processor's hosted checkout URL.
func (h *EnrollmentHandler) InitiateAccess(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	result, err := h.enrollments.InitiateAccess(c.Context(), identity, c.Params("courseId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyEnrolled):
			return response.Conflict(c, "Already enrolled in this course")
		case errors.Is(err, services.ErrCourseNotFound):
			return response.NotFound(c, "Course not found")
		case errors.Is(err, services.ErrCourseNotPurchasable):
			return response.UnprocessableEntity(c, "Course is not set up for payment", "COURSE_NOT_PURCHASABLE")
		case errors.Is(err, services.ErrCheckoutCreationFailed):
			return response.BadGateway(c, "Failed to create checkout session", "CHECKOUT_CREATION_FAILED")
		default:
			return response.InternalServerError(c, "Failed to start enrollment")
		}
	}

	return response.Success(c, result)
}

// ListOwn handles GET /api/v1/enrollments and returns the caller's
// enrollments with their courses.
func (h *EnrollmentHandler) ListOwn(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	enrollments, err := h.enrollments.ListForUser(c.Context(), identity.UserID)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch enrollments")
	}

	return response.Success(c, enrollments)
}
