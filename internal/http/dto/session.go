package dto

import "time"

type CreateSessionRequest struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

type SessionResponse struct {
	SessionID  string    `json:"sessionId"`
	UserID     int64     `json:"userId"`
	Role       string    `json:"role"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CanUseCart bool      `json:"canUseCart"`
	Cart       CartView  `json:"cart"`
}
