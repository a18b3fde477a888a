package onboarding

import (
	"github.com/gofiber/fiber/v2"
	"github.com/luma-learn/luma-api/services"
	"github.com/luma-learn/luma-api/utils/middleware"
	"github.com/luma-learn/luma-api/utils/response"
	"github.com/luma-learn/luma-api/utils/validation"
)

// OnboardingHandler lets a signed-in user pick their role once.
type OnboardingHandler struct {
	users     *services.UserService
	validator *validation.Validator
}

// NewOnboardingHandler creates a new onboarding handler
func NewOnboardingHandler(users *services.UserService) *OnboardingHandler {
	return &OnboardingHandler{
		users:     users,
		validator: validation.NewValidator(),
	}
}

// SetRoleRequest represents the request body for picking a role
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=STUDENT INSTRUCTOR"`
}

// SetRole handles POST /api/v1/onboarding/role. The local store is the
// system of record for role; the identity provider's claim is never
// written back.
func (h *OnboardingHandler) SetRole(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	user, err := h.users.SetRole(c.Context(), identity, req.Role)
	if err != nil {
		return response.InternalServerError(c, "Failed to set role")
	}

	return response.SuccessWithMessage(c, "Role updated successfully", user)
}
