package dto

import "github.com/arwoh/storefront-go/internal/notify"

type CheckoutResponse struct {
	PaymentURL string `json:"paymentUrl"`
}

type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}
