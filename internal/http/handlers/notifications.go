package handlers

import (
	"net/http"

	"github.com/arwoh/storefront-go/internal/http/dto"
	"github.com/arwoh/storefront-go/internal/middleware"
	"github.com/arwoh/storefront-go/internal/notify"
)

type NotificationsHandler struct{ inbox *notify.Inbox }

func NewNotificationsHandler(inbox *notify.Inbox) *NotificationsHandler {
	return &NotificationsHandler{inbox: inbox}
}

func (h *NotificationsHandler) Drain(w http.ResponseWriter, r *http.Request) {
	key := middleware.GetStore(r.Context()).Key()
	writeJSON(w, http.StatusOK, dto.NotificationsResponse{Notifications: h.inbox.Drain(key)})
}
