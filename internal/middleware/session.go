package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/model"
	"github.com/arwoh/storefront-go/internal/session"
)

const (
	SessionCookie   = "storefront_session"
	HeaderSessionID = "X-Session-Id"
)

type SessionResolver interface {
	Resolve(ctx context.Context, id string) (session.Session, error)
}

// CartSession resolves the browser session on /me/* routes and puts its cart
// store in the context. Requests without a live session get an unbound store,
// so every cart precondition fails with ErrUnauthenticated.
func CartSession(resolver SessionResolver, registry *cart.Registry, logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := SessionID(r)

			sess, err := resolver.Resolve(ctx, id)
			switch {
			case errors.Is(err, session.ErrNotFound):
				if id != "" {
					registry.Remove(ctx, id)
				}
				ctx = WithStore(ctx, registry.Anonymous())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			case err != nil:
				// The session may still be live; keep its store.
				logger.WithError(err).WithField("correlationId", GetCorrelationID(ctx)).Warn("resolve session")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(model.ErrorResponse{
					Error:         "session lookup failed",
					CorrelationID: GetCorrelationID(ctx),
				})
				return
			}

			store := registry.Get(sess.ID)
			// Bind is a no-op for an already bound principal. A failed first
			// fetch has already queued a notification.
			_, _ = store.Bind(ctx, sess.Principal())

			ctx = WithSession(ctx, sess)
			ctx = WithStore(ctx, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionID reads the session id from the cookie, falling back to the header.
func SessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.Header.Get(HeaderSessionID))
}

func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

func GetSession(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ctxSession).(session.Session)
	return s, ok
}

func WithStore(ctx context.Context, s *cart.Store) context.Context {
	return context.WithValue(ctx, ctxStore, s)
}

// GetStore returns the request's cart store. Never nil behind CartSession.
func GetStore(ctx context.Context) *cart.Store {
	s, _ := ctx.Value(ctxStore).(*cart.Store)
	return s
}
