package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payments-api/internal/database"
	"payments-api/internal/models"
	"payments-api/pkg/logging"
)

// Processor error taxonomy. All of these are permanent client-input faults
// except ErrPersistence, which is the only class eligible for queue retry.
var (
	ErrMalformedReference  = errors.New("invalid account reference")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAmountMismatch      = errors.New("invalid payment amount")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrProviderNotVerified = errors.New("provider not verified")
	ErrBoostNotEligible    = errors.New("boost requires an active subscription")
	ErrPersistence         = errors.New("failed to persist payment")
)

// Processing outcomes. Every outcome is terminal: a rejected callback stays
// rejected, and already-processed is a success variant.
const (
	OutcomeSubscriptionActivated = "subscription_activated"
	OutcomeBoostActivated        = "boost_activated"
	OutcomeAlreadyProcessed      = "already_processed"
	OutcomePaymentFailed         = "payment_failed"
)

// ProviderStore is the provider repository consumed by the processor.
type ProviderStore interface {
	GetProviderByTelegramID(telegramID int64) (*models.Provider, error)
	ActivateSubscription(telegramID int64, days int) error
	BoostProvider(telegramID int64, hours int) (bool, error)
}

// PaymentStore is the payment ledger repository consumed by the processor.
type PaymentStore interface {
	HasSuccessfulPayment(reference string) (bool, error)
	HasSuccessfulPaymentForProvider(telegramID int64) (bool, error)
	LogPayment(telegramID int64, amount int, reference, status string, packageDays int) error
}

// ReferralStore creates pending referral rewards.
type ReferralStore interface {
	CreateReferralReward(referrerID, inviteeID int64, amountPaid, rewardCredit, rewardDays int) (uint, error)
}

// Notifier delivers best-effort messages to subscribers.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string)
}

// Alerter delivers best-effort operational alerts.
type Alerter interface {
	SendOperatorAlert(ctx context.Context, text string)
}

// ProcessResult is a definitively resolved callback outcome.
type ProcessResult struct {
	Outcome string
	Message string
}

// ProcessorConfig holds the processor's domain knobs.
type ProcessorConfig struct {
	BoostDurationHours    int
	ReferralCommissionPct int
	ReferralRewardDays    int
}

// PaymentProcessor applies a verified callback to the provider's account:
// exactly one of subscription activation, boost extension, or rejection.
// The financial mutation (provider update + ledger insert) is separated from
// side effects (notifications, referral reward), so a side-effect failure
// can never roll back the money.
type PaymentProcessor struct {
	providers ProviderStore
	payments  PaymentStore
	referrals ReferralStore
	prices    *PriceTable
	notifier  Notifier
	alerter   Alerter
	cfg       ProcessorConfig
}

// NewPaymentProcessor creates a processor.
func NewPaymentProcessor(
	providers ProviderStore,
	payments PaymentStore,
	referrals ReferralStore,
	prices *PriceTable,
	notifier Notifier,
	alerter Alerter,
	cfg ProcessorConfig,
) *PaymentProcessor {
	return &PaymentProcessor{
		providers: providers,
		payments:  payments,
		referrals: referrals,
		prices:    prices,
		notifier:  notifier,
		alerter:   alerter,
		cfg:       cfg,
	}
}

// Process runs the callback through the gates in order; the first failing
// gate short-circuits with its taxonomy error. Queued and inline deliveries
// both land here, so the behavior is identical on either path.
func (p *PaymentProcessor) Process(ctx context.Context, cb *models.PaymentCallback) (*ProcessResult, error) {
	reference := cb.Reference()

	telegramID, packageDays, err := DecodeAccountReference(cb.AccountRef())
	if err != nil {
		logging.Errorf("Invalid account reference in callback: %v", err)
		return nil, ErrMalformedReference
	}

	amount, err := cb.AmountValue()
	if err != nil || amount <= 0 {
		logging.Errorf("Invalid amount in callback for %s", reference)
		return nil, ErrInvalidAmount
	}

	expected, ok := p.prices.ExpectedAmount(packageDays)
	if !ok || amount != expected {
		logging.Errorf("Amount mismatch for %s: expected %d, got %d", reference, expected, amount)
		return nil, ErrAmountMismatch
	}

	// Idempotency fast path. The partial unique index on the ledger is the
	// authoritative guard; this check only avoids redundant work.
	done, err := p.payments.HasSuccessfulPayment(reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if done {
		logging.Infof("Duplicate callback ignored for reference %s", reference)
		return &ProcessResult{Outcome: OutcomeAlreadyProcessed, Message: "Already processed"}, nil
	}

	if !cb.IsSuccess() {
		logging.Warnf("Payment FAILED for %d: %s", telegramID, cb.StatusValue())
		if err := p.payments.LogPayment(telegramID, amount, reference, models.PaymentStatusFailed, packageDays); err != nil {
			logging.Errorf("Failed to log failed payment for %d: %v", telegramID, err)
		}
		return &ProcessResult{Outcome: OutcomePaymentFailed, Message: "Payment failed"}, nil
	}

	provider, err := p.providers.GetProviderByTelegramID(telegramID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if provider == nil {
		logging.Warnf("Callback references unknown provider: %d", telegramID)
		if err := p.payments.LogPayment(telegramID, amount, reference, models.PaymentStatusFailedNoProvider, packageDays); err != nil {
			logging.Errorf("Failed to log no-provider payment: %v", err)
		}
		return nil, ErrProviderNotFound
	}

	if !provider.IsVerified {
		logging.Warnf("Callback rejected for unverified provider: %d", telegramID)
		if err := p.payments.LogPayment(telegramID, amount, reference, models.PaymentStatusRejectedUnverified, packageDays); err != nil {
			logging.Errorf("Failed to log unverified payment: %v", err)
		}
		return nil, ErrProviderNotVerified
	}

	// Computed before the mutation below makes it always true.
	hadPayment, err := p.payments.HasSuccessfulPaymentForProvider(telegramID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	isFirstPayment := !hadPayment

	if packageDays == 0 {
		return p.activateBoost(ctx, provider, amount, reference)
	}
	return p.activateSubscription(ctx, provider, amount, reference, packageDays, isFirstPayment)
}

// activateBoost extends boost_until without touching subscription fields.
func (p *PaymentProcessor) activateBoost(ctx context.Context, provider *models.Provider, amount int, reference string) (*ProcessResult, error) {
	telegramID := provider.TelegramID

	if !provider.IsActive {
		logging.Warnf("Boost rejected for inactive provider %d", telegramID)
		if err := p.payments.LogPayment(telegramID, amount, reference, models.PaymentStatusFailed, 0); err != nil {
			logging.Errorf("Failed to log ineligible boost payment: %v", err)
		}
		return nil, ErrBoostNotEligible
	}

	boosted, err := p.providers.BoostProvider(telegramID, p.cfg.BoostDurationHours)
	if err != nil || !boosted {
		logging.Errorf("Failed to boost provider %d: %v", telegramID, err)
		p.alerter.SendOperatorAlert(ctx, fmt.Sprintf(
			"Payment callback error: failed boost activation for provider %d, reference %s.", telegramID, reference))
		return nil, ErrPersistence
	}

	if err := p.payments.LogPayment(telegramID, amount, reference, models.PaymentStatusSuccess, 0); err != nil {
		if errors.Is(err, database.ErrDuplicateReference) {
			// A concurrent delivery won the insert race. The boost overwrite
			// is idempotent, so this delivery resolves as already processed.
			return &ProcessResult{Outcome: OutcomeAlreadyProcessed, Message: "Already processed"}, nil
		}
		logging.Errorf("Failed to log boost payment for %d: %v", telegramID, err)
		p.alerter.SendOperatorAlert(ctx, fmt.Sprintf(
			"Payment callback error: failed to log boost payment for provider %d, reference %s.", telegramID, reference))
		return nil, ErrPersistence
	}

	boostUntil := time.Now().Add(time.Duration(p.cfg.BoostDurationHours) * time.Hour)
	p.notifier.SendMessage(ctx, telegramID, fmt.Sprintf(
		"🚀 *Boost Activated!*\n\n"+
			"💰 Amount: %d KES\n"+
			"⏱ Duration: %d hours\n"+
			"📈 Active until: *%s*\n\n"+
			"Your profile is now prioritized in results.",
		amount, p.cfg.BoostDurationHours, boostUntil.Format("2006-01-02 15:04")))

	logging.Infof("Boost SUCCESS: provider %d boosted for %d hours", telegramID, p.cfg.BoostDurationHours)
	return &ProcessResult{Outcome: OutcomeBoostActivated, Message: "Boost activated"}, nil
}

// activateSubscription activates the paid package and handles the
// first-payment referral reward.
func (p *PaymentProcessor) activateSubscription(ctx context.Context, provider *models.Provider, amount int, reference string, packageDays int, isFirstPayment bool) (*ProcessResult, error) {
	telegramID := provider.TelegramID

	if err := p.providers.ActivateSubscription(telegramID, packageDays); err != nil {
		logging.Errorf("Failed to activate subscription for %d: %v", telegramID, err)
		p.alerter.SendOperatorAlert(ctx, fmt.Sprintf(
			"Payment callback error: failed subscription activation for provider %d, reference %s.", telegramID, reference))
		return nil, ErrPersistence
	}

	if err := p.payments.LogPayment(telegramID, amount, reference, models.PaymentStatusSuccess, packageDays); err != nil {
		if errors.Is(err, database.ErrDuplicateReference) {
			return &ProcessResult{Outcome: OutcomeAlreadyProcessed, Message: "Already processed"}, nil
		}
		logging.Errorf("Failed to log successful payment for %d: %v", telegramID, err)
		p.alerter.SendOperatorAlert(ctx, fmt.Sprintf(
			"Payment callback error: failed to log successful payment for provider %d, reference %s.", telegramID, reference))
		return nil, ErrPersistence
	}

	if isFirstPayment && provider.ReferredBy != nil {
		p.rewardReferrer(ctx, *provider.ReferredBy, telegramID, amount)
	}

	neighborhood := provider.Neighborhood
	if neighborhood == "" {
		neighborhood = "your area"
	}
	expiry := time.Now().Add(time.Duration(packageDays) * 24 * time.Hour)
	p.notifier.SendMessage(ctx, telegramID, fmt.Sprintf(
		"✅ *Payment Confirmed!*\n\n"+
			"💰 Amount: %d KES\n"+
			"📅 Package: %d Day(s)\n\n"+
			"🎉 Your profile is now *LIVE* in *%s* until *%s*.\n\n"+
			"Go get them! 🚀",
		amount, packageDays, neighborhood, expiry.Format("2006-01-02 15:04")))

	logging.Infof("Payment SUCCESS: provider %d activated for %d days", telegramID, packageDays)
	return &ProcessResult{Outcome: OutcomeSubscriptionActivated, Message: "Subscription activated"}, nil
}

// rewardReferrer creates the pending reward for the referrer. Errors here
// are non-fatal: the activation already happened.
func (p *PaymentProcessor) rewardReferrer(ctx context.Context, referrerID, inviteeID int64, amount int) {
	commission := amount * p.cfg.ReferralCommissionPct / 100
	if commission <= 0 {
		return
	}

	rewardID, err := p.referrals.CreateReferralReward(referrerID, inviteeID, amount, commission, p.cfg.ReferralRewardDays)
	if err != nil {
		logging.Errorf("Referral reward error (non-fatal): %v", err)
		return
	}

	p.notifier.SendMessage(ctx, referrerID, fmt.Sprintf(
		"🎉 *Referral Success!*\n\n"+
			"Someone you referred just made their first payment.\n"+
			"Claim your reward: %d KES credit or %d free days.",
		commission, p.cfg.ReferralRewardDays))

	logging.Infof("Created pending referral reward %d for %d", rewardID, referrerID)
}
