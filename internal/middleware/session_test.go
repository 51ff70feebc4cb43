package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/logging"
	"github.com/arwoh/storefront-go/internal/session"
)

type emptyRemote struct{}

func (emptyRemote) GetCart(ctx context.Context) (cart.Snapshot, error) {
	return cart.Snapshot{UserID: 7, Items: []cart.Line{}}, nil
}
func (emptyRemote) AddItem(ctx context.Context, imageID int64, quantity int) (cart.Snapshot, error) {
	return cart.Snapshot{}, nil
}
func (emptyRemote) UpdateItem(ctx context.Context, cartItemID int64, quantity int) (cart.Snapshot, error) {
	return cart.Snapshot{}, nil
}
func (emptyRemote) RemoveItem(ctx context.Context, cartItemID int64) (cart.Snapshot, error) {
	return cart.Snapshot{}, nil
}

func newSessionFixture(t *testing.T) (*session.Service, *cart.Registry, http.Handler, *[]*cart.Store) {
	t.Helper()
	svc := session.NewService(session.NewMemoryRepository(), time.Hour, logging.Discard())
	registry := cart.NewRegistry(cart.Deps{Remote: emptyRemote{}, Roles: []string{"Customer"}, Logger: logging.Discard()})

	var seen []*cart.Store
	h := CartSession(svc, registry, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, GetStore(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))
	return svc, registry, h, &seen
}

func TestCartSessionFromCookie(t *testing.T) {
	svc, registry, h, seen := newSessionFixture(t)
	sess, err := svc.Start(context.Background(), cart.Principal{UserID: 7, Role: "Customer", Token: "tok"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sess.ID})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *seen, 1)
	store := (*seen)[0]
	assert.Equal(t, sess.ID, store.Key())
	assert.NoError(t, store.Authorize())
	assert.Equal(t, 1, registry.Len())
}

func TestCartSessionFromHeaderReusesStore(t *testing.T) {
	svc, registry, h, seen := newSessionFixture(t)
	sess, err := svc.Start(context.Background(), cart.Principal{UserID: 7, Role: "Customer", Token: "tok"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
		req.Header.Set(HeaderSessionID, sess.ID)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, *seen, 2)
	assert.Same(t, (*seen)[0], (*seen)[1])
	assert.Equal(t, 1, registry.Len())
}

func TestCartSessionWithoutSession(t *testing.T) {
	_, registry, h, seen := newSessionFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	req.Header.Set(HeaderSessionID, "unknown")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, *seen, 1)
	store := (*seen)[0]
	require.NotNil(t, store)
	assert.ErrorIs(t, store.Authorize(), cart.ErrUnauthenticated)
	assert.Equal(t, 0, registry.Len())
}

func TestCartSessionEndedSessionDropsStore(t *testing.T) {
	svc, registry, h, _ := newSessionFixture(t)
	sess, err := svc.Start(context.Background(), cart.Principal{UserID: 7, Role: "Customer", Token: "tok"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	req.Header.Set(HeaderSessionID, sess.ID)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, 1, registry.Len())

	require.NoError(t, svc.End(context.Background(), sess.ID))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 0, registry.Len())
}

func TestCookieWinsOverHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	req.Header.Set(HeaderSessionID, "from-header")
	assert.Equal(t, "from-header", SessionID(req))

	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", SessionID(req))
}

type flakyResolver struct {
	svc *session.Service
	err error
}

func (f *flakyResolver) Resolve(ctx context.Context, id string) (session.Session, error) {
	if f.err != nil {
		return session.Session{}, f.err
	}
	return f.svc.Resolve(ctx, id)
}

func TestCartSessionLookupFailureKeepsStore(t *testing.T) {
	svc := session.NewService(session.NewMemoryRepository(), time.Hour, logging.Discard())
	registry := cart.NewRegistry(cart.Deps{Remote: emptyRemote{}, Roles: []string{"Customer"}, Logger: logging.Discard()})
	resolver := &flakyResolver{svc: svc}

	calls := 0
	h := CartSession(resolver, registry, logging.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNoContent)
	}))

	sess, err := svc.Start(context.Background(), cart.Principal{UserID: 7, Role: "Customer", Token: "tok"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	req.Header.Set(HeaderSessionID, sess.ID)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, 1, registry.Len())

	resolver.err = errors.New("connection refused")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"error":"session lookup failed"}`, rr.Body.String())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, registry.Len())
	assert.NoError(t, registry.Get(sess.ID).Authorize())
}
