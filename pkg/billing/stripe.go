// Package billing sells credit packs through Stripe Checkout.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/models"
)

// EmailSender abstracts email sending for billing notifications.
type EmailSender interface {
	SendEmail(toEmail, toName, subject, htmlBody, plainTextBody string) error
}

// CreditLedger applies purchased credits. Applying the same reference twice
// must not credit twice.
type CreditLedger interface {
	TopUp(ctx context.Context, userID, amount int, pack, reference string) (remaining int, applied bool, err error)
}

// UserLookup resolves the buyer for receipts
type UserLookup interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

// Service handles Stripe billing operations
type Service struct {
	config *StripeConfig
	ledger CreditLedger
	users  UserLookup
	email  EmailSender

	// newSession is checkoutsession.New, replaced in tests
	newSession func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PriceSmall    string
	PriceMedium   string
	PriceLarge    string
	SuccessURL    string
	CancelURL     string
	BaseURL       string
}

// Credits granted by each pack
const (
	CreditsSmall  = 100
	CreditsMedium = 500
	CreditsLarge  = 2000
)

// NewService creates a new billing service
func NewService(config *StripeConfig, ledger CreditLedger, users UserLookup) *Service {
	stripe.Key = config.SecretKey

	return &Service{
		config:     config,
		ledger:     ledger,
		users:      users,
		newSession: checkoutsession.New,
	}
}

// SetEmailSender sets the email sender for billing notifications.
func (s *Service) SetEmailSender(e EmailSender) {
	s.email = e
}

// Packs lists the credit packs on sale
func (s *Service) Packs() []models.CreditPack {
	return []models.CreditPack{
		{Name: "small", Credits: CreditsSmall, PriceID: s.config.PriceSmall},
		{Name: "medium", Credits: CreditsMedium, PriceID: s.config.PriceMedium},
		{Name: "large", Credits: CreditsLarge, PriceID: s.config.PriceLarge},
	}
}

// Pack returns the named pack
func (s *Service) Pack(name string) (models.CreditPack, error) {
	for _, p := range s.Packs() {
		if p.Name == name {
			if p.PriceID == "" {
				return models.CreditPack{}, fmt.Errorf("no Stripe price configured for pack %q", name)
			}
			return p, nil
		}
	}
	return models.CreditPack{}, domain.NewValidationError(fmt.Sprintf("unknown credit pack %q", name))
}

// CreateCheckoutSession starts a one-off payment for a credit pack. The
// credits are granted by the webhook once Stripe confirms payment.
func (s *Service) CreateCheckoutSession(ctx context.Context, u *models.User, packName string) (*models.CheckoutResponse, error) {
	pack, err := s.Pack(packName)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:     stripe.String(u.Email),
		ClientReferenceID: stripe.String(strconv.Itoa(u.ID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(pack.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
		Metadata: map[string]string{
			"user_id": strconv.Itoa(u.ID),
			"pack":    pack.Name,
			"credits": strconv.Itoa(pack.Credits),
		},
	}
	params.Context = ctx

	sess, err := s.newSession(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &models.CheckoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// HandleWebhook verifies and processes a Stripe webhook event
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return domain.NewValidationError("webhook signature verification failed")
	}

	log.Printf("📨 Stripe webhook received: %s", event.Type)

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		return s.handleCheckoutCompleted(ctx, event)
	default:
		log.Printf("⚠️  Unhandled webhook event type: %s", event.Type)
	}
	return nil
}

// handleCheckoutCompleted credits the pack once the session is paid. Stripe
// retries deliveries, so the session id is the top-up reference.
func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		log.Printf("⏳ Checkout %s not paid yet (status %s)", sess.ID, sess.PaymentStatus)
		return nil
	}

	userID, err := strconv.Atoi(sess.Metadata["user_id"])
	if err != nil || userID <= 0 {
		return domain.NewValidationError("user_id not found in session metadata")
	}
	credits, err := strconv.Atoi(sess.Metadata["credits"])
	if err != nil || credits <= 0 {
		return domain.NewValidationError("credits not found in session metadata")
	}
	pack := sess.Metadata["pack"]

	remaining, applied, err := s.ledger.TopUp(ctx, userID, credits, pack, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to apply credits: %w", err)
	}
	if !applied {
		log.Printf("↩️  Checkout %s already applied", sess.ID)
		return nil
	}

	log.Printf("✅ Credits purchased: user_id=%d, pack=%s, credits=%d, balance=%d", userID, pack, credits, remaining)
	s.notifyPurchase(ctx, userID, pack, credits, remaining)
	return nil
}

func (s *Service) notifyPurchase(ctx context.Context, userID int, pack string, credits, remaining int) {
	if s.email == nil || s.users == nil {
		return
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		log.Printf("⚠️  Failed to load user %d for receipt: %v", userID, err)
		return
	}

	subject, html, plain := buildCreditsPurchasedEmail(u.Name, pack, credits, remaining, s.config.BaseURL)
	if err := s.email.SendEmail(u.Email, u.Name, subject, html, plain); err != nil {
		log.Printf("⚠️  Failed to send credits receipt to user %d: %v", userID, err)
	}
}
