package payments

import (
	"context"
	"errors"
	"math"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Metadata keys carried on checkout sessions so the asynchronous webhook
// can correlate a completed payment back to a (user, course) pair.
const (
	MetadataUserID   = "userId"
	MetadataCourseID = "courseId"
)

// EventCheckoutCompleted is the only event type that drives state change.
const EventCheckoutCompleted = "checkout.session.completed"

var ErrNoSessionURL = errors.New("payment processor returned no checkout URL")

// CheckoutRequest describes one checkout session: a single line item at
// an already-provisioned processor price, quantity 1.
type CheckoutRequest struct {
	PriceID    string
	UserID     string
	CourseID   string
	SuccessURL string
	CancelURL  string
}

// Config holds Stripe credentials.
type Config struct {
	SecretKey     string
	WebhookSecret string
}

// Client wraps the Stripe SDK behind the few calls this system makes.
type Client struct {
	api           *client.API
	webhookSecret string
}

// NewClient creates a Stripe-backed payments client.
func NewClient(cfg Config) *Client {
	return &Client{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateProduct registers a course as a processor product and returns the
// product reference.
func (c *Client) CreateProduct(ctx context.Context, title string, description *string) (string, error) {
	params := &stripe.ProductParams{
		Name: stripe.String(title),
	}
	params.Context = ctx
	if description != nil {
		params.Description = stripe.String(*description)
	}

	product, err := c.api.Products.New(params)
	if err != nil {
		return "", err
	}
	return product.ID, nil
}

// CreatePrice registers a one-time USD price for a product. The amount is
// in whole currency units and converted to the processor's minor units.
func (c *Client) CreatePrice(ctx context.Context, productID string, amount float64) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
	}
	params.Context = ctx

	price, err := c.api.Prices.New(params)
	if err != nil {
		return "", err
	}
	return price.ID, nil
}

// CreateCheckoutSession opens a hosted checkout for exactly one line item
// and returns the redirect URL. The (user, course) pair rides along as
// opaque metadata and comes back on the completion webhook.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataUserID, req.UserID)
	params.AddMetadata(MetadataCourseID, req.CourseID)

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	if session.URL == "" {
		return "", ErrNoSessionURL
	}
	return session.URL, nil
}

// ConstructEvent verifies a webhook payload against its signature header
// and the shared endpoint secret. Verification failure means the payload
// cannot be trusted and must cause no state change.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
}
