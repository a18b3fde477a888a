package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/services/payments"
	"github.com/luma-learn/luma-api/utils/cache"
	"github.com/luma-learn/luma-api/utils/middleware"
	"gorm.io/gorm"
)

// CheckoutGateway is the slice of the payment processor the enrollment
// flow needs: open a hosted checkout, get back a redirect URL.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (string, error)
}

// AccessResult is the outcome of an initiate-access call. Enrolled means
// the free-course shortcut ran and access is already granted; otherwise
// RedirectURL points at the processor's hosted checkout.
type AccessResult struct {
	RedirectURL string `json:"redirect_url"`
	Enrolled    bool   `json:"enrolled"`
}

// EnrollmentService implements the purchase/enrollment flow. Free courses
// enroll synchronously; paid courses hand off to the payment processor
// and are completed by its webhook. Pending-ness is never persisted: it
// is exactly "a checkout session exists externally, no enrollment row yet".
type EnrollmentService struct {
	db          *gorm.DB
	users       *UserService
	gateway     CheckoutGateway
	revalidator *cache.Revalidator
	appURL      string
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB, users *UserService, gateway CheckoutGateway, revalidator *cache.Revalidator, appURL string) *EnrollmentService {
	return &EnrollmentService{
		db:          db,
		users:       users,
		gateway:     gateway,
		revalidator: revalidator,
		appURL:      appURL,
	}
}

// InitiateAccess starts the enrollment flow for (identity, course).
func (s *EnrollmentService) InitiateAccess(ctx context.Context, identity *middleware.Identity, courseID string) (*AccessResult, error) {
	if _, err := s.users.Ensure(ctx, identity, model.RoleStudent); err != nil {
		return nil, err
	}

	var existing model.Enrollment
	err := s.db.WithContext(ctx).
		First(&existing, "user_id = ? AND course_id = ?", identity.UserID, courseID).Error
	if err == nil {
		return nil, ErrAlreadyEnrolled
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	// Free course: enroll instantly, never contact the processor.
	if course.IsFree() {
		enrollment := model.Enrollment{UserID: identity.UserID, CourseID: courseID}
		if err := s.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
			// A concurrent initiate won the insert; the caller is enrolled
			// either way.
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, err
			}
		}
		s.revalidator.CourseChanged(ctx, courseID)
		return &AccessResult{
			RedirectURL: fmt.Sprintf("%s/course/%s?enrolled=true", s.appURL, courseID),
			Enrolled:    true,
		}, nil
	}

	if course.StripePriceID == nil || *course.StripePriceID == "" {
		return nil, ErrCourseNotPurchasable
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		PriceID:    *course.StripePriceID,
		UserID:     identity.UserID,
		CourseID:   courseID,
		SuccessURL: fmt.Sprintf("%s/dashboard", s.appURL),
		CancelURL:  fmt.Sprintf("%s/course/%s?canceled=true", s.appURL, courseID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutCreationFailed, err)
	}
	if url == "" {
		return nil, ErrCheckoutCreationFailed
	}

	return &AccessResult{RedirectURL: url}, nil
}

// CompleteCheckout is the webhook leg of the flow. The processor delivers
// at least once, so the enrollment insert treats a duplicate key as
// success: exactly one row per (user, course) ever exists, and every
// delivery after the first acknowledges cleanly.
func (s *EnrollmentService) CompleteCheckout(ctx context.Context, userID, courseID string) error {
	if userID == "" || courseID == "" {
		return ErrMissingCorrelationData
	}

	if err := s.users.EnsureByID(ctx, userID); err != nil {
		return err
	}

	enrollment := model.Enrollment{UserID: userID, CourseID: courseID}
	if err := s.db.WithContext(ctx).Create(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("enrollment: duplicate completion for user=%s course=%s, acknowledging", userID, courseID)
			return nil
		}
		return err
	}

	s.revalidator.CourseChanged(ctx, courseID)
	return nil
}

// ListForUser returns the caller's enrollments with their courses.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// IsEnrolled reports whether an enrollment row exists for the pair.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}
