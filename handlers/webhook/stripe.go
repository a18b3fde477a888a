package webhook

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/services"
	"github.com/luma-learn/luma-api/services/payments"
	"github.com/luma-learn/luma-api/utils/response"
	"github.com/stripe/stripe-go/v82"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventVerifier authenticates a raw callback payload against its
// signature header. Anything that fails verification is untrusted input.
type EventVerifier interface {
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// StripeHandler receives payment-lifecycle callbacks from the processor.
// Delivery is at least once: every path that durably processed the event
// answers 200 so the processor stops retrying, including duplicates.
type StripeHandler struct {
	db          *gorm.DB
	verifier    EventVerifier
	enrollments *services.EnrollmentService
}

// NewStripeHandler creates a new Stripe webhook handler
func NewStripeHandler(db *gorm.DB, verifier EventVerifier, enrollments *services.EnrollmentService) *StripeHandler {
	return &StripeHandler{
		db:          db,
		verifier:    verifier,
		enrollments: enrollments,
	}
}

// HandleEvent handles POST /api/v1/webhooks/stripe
func (h *StripeHandler) HandleEvent(c *fiber.Ctx) error {
	payload := c.Body()
	sigHeader := c.Get("Stripe-Signature")
	if sigHeader == "" {
		return response.BadRequest(c, "Missing signature")
	}

	event, err := h.verifier.ConstructEvent(payload, sigHeader)
	if err != nil {
		log.Printf("webhook: signature verification failed: %v", err)
		return response.Error(c, fiber.StatusBadRequest, "Invalid signature", "INVALID_SIGNATURE")
	}

	// Only completed checkouts drive state change; everything else is
	// acknowledged untouched.
	if event.Type != payments.EventCheckoutCompleted {
		return response.SuccessWithMessage(c, "Event ignored", nil)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.recordEvent(c, event, payload, "malformed checkout session payload")
		return response.BadRequest(c, "Malformed event payload")
	}

	userID := session.Metadata[payments.MetadataUserID]
	courseID := session.Metadata[payments.MetadataCourseID]

	if err := h.enrollments.CompleteCheckout(c.Context(), userID, courseID); err != nil {
		if errors.Is(err, services.ErrMissingCorrelationData) {
			// Terminal: retrying will not grow metadata. Record it so the
			// poison-event sweep can alert on it, and answer non-2xx once.
			log.Printf("webhook: event %s missing correlation metadata", event.ID)
			h.recordEvent(c, event, payload, err.Error())
			return response.Error(c, fiber.StatusBadRequest, "Missing userId or courseId in metadata", "MISSING_CORRELATION_DATA")
		}
		// Store failure: let the processor retry.
		log.Printf("webhook: failed to complete checkout for event %s: %v", event.ID, err)
		return response.InternalServerError(c, "Failed to process event")
	}

	h.recordEvent(c, event, payload, "")

	return response.SuccessWithMessage(c, "Enrollment recorded", nil)
}

// recordEvent keeps an audit row per processed event. The unique event id
// makes redelivery visible without blocking it; audit failures never fail
// the callback itself.
func (h *StripeHandler) recordEvent(c *fiber.Ctx, event stripe.Event, payload []byte, errorMsg string) {
	record := model.WebhookEvent{
		StripeEventID: event.ID,
		Type:          string(event.Type),
		Payload:       datatypes.JSON(payload),
		ErrorMsg:      errorMsg,
	}
	err := h.db.WithContext(c.Context()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error
	if err != nil {
		log.Printf("webhook: failed to record event %s: %v", event.ID, err)
	}
}
