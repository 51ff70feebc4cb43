package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/http/dto"
	"github.com/arwoh/storefront-go/internal/middleware"
	"github.com/arwoh/storefront-go/internal/notify"
	"github.com/arwoh/storefront-go/internal/session"
)

// SessionHandler persists the browser's credentials and binds its cart store.
type SessionHandler struct {
	sessions     *session.Service
	registry     *cart.Registry
	inbox        *notify.Inbox
	cookieSecure bool
	logger       logrus.FieldLogger
}

func NewSessionHandler(sessions *session.Service, registry *cart.Registry, inbox *notify.Inbox, cookieSecure bool, logger logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{sessions: sessions, registry: registry, inbox: inbox, cookieSecure: cookieSecure, logger: logger}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	// Signing in again replaces whatever the browser held before.
	if prev := middleware.SessionID(r); prev != "" {
		h.end(r, prev)
	}

	p := cart.Principal{UserID: req.UserID, Role: req.Role, Token: req.Token}
	sess, err := h.sessions.Start(ctx, p)
	if err != nil {
		if errors.Is(err, cart.ErrUnauthenticated) {
			writeError(w, r, http.StatusBadRequest, "token and userId are required")
			return
		}
		h.logger.WithError(err).Error("start session")
		writeError(w, r, http.StatusInternalServerError, "could not start session")
		return
	}

	store := h.registry.Get(sess.ID)
	_, bindErr := store.Bind(ctx, p)
	if bindErr != nil && !errors.Is(bindErr, cart.ErrForbiddenRole) {
		h.logger.WithError(bindErr).WithField("session", sess.ID).Warn("initial cart fetch failed")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, dto.SessionResponse{
		SessionID:  sess.ID,
		UserID:     sess.UserID,
		Role:       sess.Role,
		ExpiresAt:  sess.ExpiresAt,
		CanUseCart: store.Authorize() == nil,
		Cart:       dto.NewCartView(store.View()),
	})
}

// Delete is logout.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if id := middleware.SessionID(r); id != "" {
		h.end(r, id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) end(r *http.Request, id string) {
	if err := h.sessions.End(r.Context(), id); err != nil {
		h.logger.WithError(err).WithField("session", id).Warn("delete session")
	}
	h.registry.Remove(r.Context(), id)
	h.inbox.Forget(id)
}
