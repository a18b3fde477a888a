package services

import (
	"context"
	"errors"
	"testing"

	"github.com/luma-learn/luma-api/model"
	"github.com/luma-learn/luma-api/services/payments"
	"github.com/luma-learn/luma-api/utils/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeGateway records checkout requests instead of calling the processor.
type fakeGateway struct {
	calls []payments.CheckoutRequest
	url   string
	err   error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.url, f.err
}

func newEnrollmentFixture(t *testing.T) (*gorm.DB, *EnrollmentService, *fakeGateway) {
	db := newTestDB(t)
	gateway := &fakeGateway{url: "https://checkout.example.com/session/cs_123"}
	svc := NewEnrollmentService(db, NewUserService(db), gateway, nil, "http://localhost:3000")
	return db, svc, gateway
}

func studentIdentity(id string) *middleware.Identity {
	return &middleware.Identity{UserID: id, Email: id + "@example.com"}
}

func TestInitiateAccessFreeCourseEnrollsImmediately(t *testing.T) {
	db, svc, gateway := newEnrollmentFixture(t)
	createInstructor(t, db, "inst-1")
	course := createCourse(t, db, "inst-1", 0, nil)

	result, err := svc.InitiateAccess(context.Background(), studentIdentity("u1"), course.ID)
	require.NoError(t, err)

	assert.True(t, result.Enrolled)
	assert.Equal(t, "http://localhost:3000/course/"+course.ID+"?enrolled=true", result.RedirectURL)
	// The processor is never contacted for a free course.
	assert.Empty(t, gateway.calls)

	var count int64
	require.NoError(t, db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", "u1", course.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInitiateAccessRejectsRepeatEnrollment(t *testing.T) {
	db, svc, _ := newEnrollmentFixture(t)
	createInstructor(t, db, "inst-1")
	course := createCourse(t, db, "inst-1", 0, nil)

	_, err := svc.InitiateAccess(context.Background(), studentIdentity("u1"), course.ID)
	require.NoError(t, err)

	_, err = svc.InitiateAccess(context.Background(), studentIdentity("u1"), course.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)

	var count int64
	require.NoError(t, db.Model(&model.Enrollment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInitiateAccessCourseNotFound(t *testing.T) {
	_, svc, _ := newEnrollmentFixture(t)

	_, err := svc.InitiateAccess(context.Background(), studentIdentity("u1"), "missing-course")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestInitiateAccessPaidCourseWithoutPriceReference(t *testing.T) {
	db, svc, gateway := newEnrollmentFixture(t)
	createInstructor(t, db, "inst-1")
	course := createCourse(t, db, "inst-1", 49.99, nil)

	_, err := svc.InitiateAccess(context.Background(), studentIdentity("u2"), course.ID)
	assert.ErrorIs(t, err, ErrCourseNotPurchasable)
	assert.Empty(t, gateway.calls)
}

func TestInitiateAccessPaidCourseReturnsCheckoutURL(t *testing.T) {
	db, svc, gateway := newEnrollmentFixture(t)
	createInstructor(t, db, "inst-1")
	priceID := "price_abc"
	course := createCourse(t, db, "inst-1", 49.99, &priceID)

	result, err := svc.InitiateAccess(context.Background(), studentIdentity("u2"), course.ID)
	require.NoError(t, err)

	assert.False(t, result.Enrolled)
	assert.Equal(t, "https://checkout.example.com/session/cs_123", result.RedirectURL)

	// The session carries the correlation metadata and redirect targets.
	require.Len(t, gateway.calls, 1)
	call := gateway.calls[0]
	assert.Equal(t, "price_abc", call.PriceID)
	assert.Equal(t, "u2", call.UserID)
	assert.Equal(t, course.ID, call.CourseID)
	assert.Equal(t, "http://localhost:3000/dashboard", call.SuccessURL)
	assert.Equal(t, "http://localhost:3000/course/"+course.ID+"?canceled=true", call.CancelURL)

	// No enrollment row until the webhook completes the payment.
	var count int64
	require.NoError(t, db.Model(&model.Enrollment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestInitiateAccessGatewayFailure(t *testing.T) {
	db, svc, gateway := newEnrollmentFixture(t)
	gateway.url = ""
	gateway.err = errors.New("processor unavailable")
	createInstructor(t, db, "inst-1")
	priceID := "price_abc"
	course := createCourse(t, db, "inst-1", 49.99, &priceID)

	_, err := svc.InitiateAccess(context.Background(), studentIdentity("u2"), course.ID)
	assert.ErrorIs(t, err, ErrCheckoutCreationFailed)
}

func TestCompleteCheckoutCreatesEnrollment(t *testing.T) {
	db, svc, _ := newEnrollmentFixture(t)
	createInstructor(t, db, "inst-1")
	priceID := "price_abc"
	course := createCourse(t, db, "inst-1", 49.99, &priceID)

	require.NoError(t, svc.CompleteCheckout(context.Background(), "u2", course.ID))

	enrolled, err := svc.IsEnrolled(context.Background(), "u2", course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	// The user row is upserted even if the user never hit initiate on
	// this node.
	var user model.User
	require.NoError(t, db.First(&user, "id = ?", "u2").Error)
	assert.Equal(t, model.RoleStudent, user.Role)
}

func TestCompleteCheckoutIsIdempotent(t *testing.T) {
	db, svc, _ := newEnrollmentFixture(t)
	createInstructor(t, db, "inst-1")
	priceID := "price_abc"
	course := createCourse(t, db, "inst-1", 49.99, &priceID)

	require.NoError(t, svc.CompleteCheckout(context.Background(), "u2", course.ID))
	// At-least-once delivery: the second completion is a no-op success.
	require.NoError(t, svc.CompleteCheckout(context.Background(), "u2", course.ID))

	var count int64
	require.NoError(t, db.Model(&model.Enrollment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCompleteCheckoutMissingCorrelationData(t *testing.T) {
	db, svc, _ := newEnrollmentFixture(t)

	assert.ErrorIs(t, svc.CompleteCheckout(context.Background(), "", "c1"), ErrMissingCorrelationData)
	assert.ErrorIs(t, svc.CompleteCheckout(context.Background(), "u1", ""), ErrMissingCorrelationData)

	var count int64
	require.NoError(t, db.Model(&model.Enrollment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestListForUserReturnsCourses(t *testing.T) {
	db, svc, _ := newEnrollmentFixture(t)
	createInstructor(t, db, "inst-1")
	course := createCourse(t, db, "inst-1", 0, nil)

	_, err := svc.InitiateAccess(context.Background(), studentIdentity("u1"), course.ID)
	require.NoError(t, err)

	enrollments, err := svc.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, course.ID, enrollments[0].Course.ID)
	assert.Equal(t, "Test Course", enrollments[0].Course.Title)
}
