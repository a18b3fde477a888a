package services

import "errors"

// Sentinel errors surfaced by the domain services. Handlers map these to
// HTTP statuses; nothing here is fatal to the process.
var (
	// ErrNotFoundOrUnauthorized deliberately conflates "missing" with
	// "not yours" so authoring endpoints never leak entity existence.
	ErrNotFoundOrUnauthorized = errors.New("entity not found or not owned by the acting user")

	ErrAlreadyEnrolled        = errors.New("user is already enrolled in this course")
	ErrCourseNotFound         = errors.New("course not found")
	ErrCourseNotPurchasable   = errors.New("course is not set up for payment")
	ErrCheckoutCreationFailed = errors.New("failed to create checkout session")

	ErrMissingCorrelationData = errors.New("callback metadata is missing userId or courseId")
)
