package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/arwoh/storefront-go/internal/auth"
	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/notify"
)

var (
	ErrEmptyCart         = errors.New("your cart is empty")
	ErrInvalidPaymentURL = errors.New("payment service returned an invalid redirect URL")
)

const failureMessage = "Could not start checkout. Please try again."

type PaymentLinker interface {
	CreateLink(ctx context.Context) (string, error)
}

type Publisher interface {
	PublishCheckoutLinkRequested(ctx context.Context, userID int64, s cart.Snapshot, paymentURL string) error
}

type Trigger struct {
	payments  PaymentLinker
	notifier  cart.Notifier
	publisher Publisher
	logger    logrus.FieldLogger
}

func NewTrigger(payments PaymentLinker, notifier cart.Notifier, publisher Publisher, logger logrus.FieldLogger) *Trigger {
	if logger == nil {
		logger = logrus.New()
	}
	return &Trigger{payments: payments, notifier: notifier, publisher: publisher, logger: logger}
}

// Start returns the payment page the browser should navigate to.
func (t *Trigger) Start(ctx context.Context, store *cart.Store) (string, error) {
	link, err := t.start(ctx, store)
	if err != nil {
		t.fail(store.Key(), err)
		return "", err
	}
	return link, nil
}

func (t *Trigger) start(ctx context.Context, store *cart.Store) (string, error) {
	if err := store.Authorize(); err != nil {
		return "", err
	}
	snap := store.Snapshot()
	if snap.IsEmpty() {
		return "", ErrEmptyCart
	}

	p := store.Principal()
	link, err := t.payments.CreateLink(auth.WithToken(ctx, p.Token))
	if err != nil {
		return "", fmt.Errorf("create payment link: %w", err)
	}
	if err := validateLink(link); err != nil {
		return "", err
	}

	if t.publisher != nil {
		if err := t.publisher.PublishCheckoutLinkRequested(ctx, p.UserID, snap, link); err != nil {
			t.logger.WithError(err).Warn("publish checkout link requested")
		}
	}
	return link, nil
}

func (t *Trigger) fail(key string, err error) {
	entry := t.logger.WithError(err).WithField("session", key)
	msg := failureMessage
	if cart.IsPrecondition(err) || errors.Is(err, ErrEmptyCart) {
		msg = err.Error()
		entry.Info("checkout precondition failed")
	} else {
		entry.Warn("checkout failed")
	}
	if t.notifier != nil {
		t.notifier.Notify(key, notify.LevelError, msg)
	}
}

func validateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentURL, link)
	}
	return nil
}
