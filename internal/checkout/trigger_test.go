package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arwoh/storefront-go/internal/auth"
	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/logging"
	"github.com/arwoh/storefront-go/internal/notify"
)

type stubRemote struct {
	snapshot cart.Snapshot
}

func (s stubRemote) GetCart(ctx context.Context) (cart.Snapshot, error) { return s.snapshot, nil }
func (s stubRemote) AddItem(ctx context.Context, imageID int64, quantity int) (cart.Snapshot, error) {
	return s.snapshot, nil
}
func (s stubRemote) UpdateItem(ctx context.Context, cartItemID int64, quantity int) (cart.Snapshot, error) {
	return s.snapshot, nil
}
func (s stubRemote) RemoveItem(ctx context.Context, cartItemID int64) (cart.Snapshot, error) {
	return s.snapshot, nil
}

type PaymentLinkerMock struct {
	CreateLinkFunc func(ctx context.Context) (string, error)
	tokens         []string
}

func (m *PaymentLinkerMock) CreateLink(ctx context.Context) (string, error) {
	m.tokens = append(m.tokens, auth.Token(ctx))
	return m.CreateLinkFunc(ctx)
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []string
}

func (n *recordingNotifier) Notify(key string, level notify.Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, message)
}

type recordingPublisher struct {
	links []string
	users []int64
}

func (p *recordingPublisher) PublishCheckoutLinkRequested(ctx context.Context, userID int64, s cart.Snapshot, paymentURL string) error {
	p.links = append(p.links, paymentURL)
	p.users = append(p.users, userID)
	return nil
}

var customer = cart.Principal{UserID: 7, Role: "Customer", Token: "tok-7"}

func filledCart() cart.Snapshot {
	return cart.Snapshot{
		UserID:     7,
		Items:      []cart.Line{{CartItemID: 1, ImageID: 42, UnitPrice: decimal.NewFromInt(100000), Quantity: 1}},
		TotalPrice: decimal.NewFromInt(100000),
	}
}

func newStore(t *testing.T, snap cart.Snapshot, p cart.Principal) *cart.Store {
	t.Helper()
	s := cart.NewStore("session-1", cart.Deps{
		Remote: stubRemote{snapshot: snap},
		Roles:  []string{"Customer"},
		Logger: logging.Discard(),
	})
	_, _ = s.Bind(context.Background(), p)
	return s
}

func TestStartReturnsPaymentURL(t *testing.T) {
	payments := &PaymentLinkerMock{CreateLinkFunc: func(ctx context.Context) (string, error) {
		return "https://pay.example.com/c/abc", nil
	}}
	notes := &recordingNotifier{}
	pub := &recordingPublisher{}
	trigger := NewTrigger(payments, notes, pub, logging.Discard())

	link, err := trigger.Start(context.Background(), newStore(t, filledCart(), customer))
	require.NoError(t, err)

	assert.Equal(t, "https://pay.example.com/c/abc", link)
	assert.Equal(t, []string{"tok-7"}, payments.tokens)
	assert.Equal(t, []string{link}, pub.links)
	assert.Equal(t, []int64{7}, pub.users)
	assert.Empty(t, notes.notes)
}

func TestStartPublishesBoundUserWhenSnapshotOmitsIt(t *testing.T) {
	payments := &PaymentLinkerMock{CreateLinkFunc: func(ctx context.Context) (string, error) {
		return "https://pay.example.com/c/abc", nil
	}}
	pub := &recordingPublisher{}
	trigger := NewTrigger(payments, &recordingNotifier{}, pub, logging.Discard())

	anonymousCart := filledCart()
	anonymousCart.UserID = 0
	_, err := trigger.Start(context.Background(), newStore(t, anonymousCart, customer))
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, pub.users)
}

func TestStartFailures(t *testing.T) {
	tests := map[string]struct {
		snapshot  cart.Snapshot
		principal cart.Principal
		link      string
		linkErr   error
		wantErr   error
		wantNote  string
		wantCalls int
	}{
		"unauthenticated": {
			snapshot:  filledCart(),
			principal: cart.Principal{},
			wantErr:   cart.ErrUnauthenticated,
			wantNote:  cart.ErrUnauthenticated.Error(),
		},
		"wrong role": {
			snapshot:  filledCart(),
			principal: cart.Principal{UserID: 8, Role: "Photographer", Token: "tok-8"},
			wantErr:   cart.ErrForbiddenRole,
			wantNote:  cart.ErrForbiddenRole.Error(),
		},
		"empty cart": {
			snapshot:  cart.Snapshot{UserID: 7, Items: []cart.Line{}},
			principal: customer,
			wantErr:   ErrEmptyCart,
			wantNote:  ErrEmptyCart.Error(),
		},
		"payment service down": {
			snapshot:  filledCart(),
			principal: customer,
			linkErr:   errors.New("connection refused"),
			wantNote:  failureMessage,
			wantCalls: 1,
		},
		"relative url": {
			snapshot:  filledCart(),
			principal: customer,
			link:      "/checkout/abc",
			wantErr:   ErrInvalidPaymentURL,
			wantNote:  failureMessage,
			wantCalls: 1,
		},
		"javascript url": {
			snapshot:  filledCart(),
			principal: customer,
			link:      "javascript:alert(1)",
			wantErr:   ErrInvalidPaymentURL,
			wantNote:  failureMessage,
			wantCalls: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			payments := &PaymentLinkerMock{CreateLinkFunc: func(ctx context.Context) (string, error) {
				return tc.link, tc.linkErr
			}}
			notes := &recordingNotifier{}
			pub := &recordingPublisher{}
			trigger := NewTrigger(payments, notes, pub, logging.Discard())

			link, err := trigger.Start(context.Background(), newStore(t, tc.snapshot, tc.principal))
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.linkErr != nil {
				assert.ErrorIs(t, err, tc.linkErr)
			}

			assert.Empty(t, link)
			assert.Len(t, payments.tokens, tc.wantCalls)
			assert.Equal(t, []string{tc.wantNote}, notes.notes)
			assert.Empty(t, pub.links)
		})
	}
}
