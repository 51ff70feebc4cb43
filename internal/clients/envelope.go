package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnavailable marks transport failures: the upstream could not be reached
	// or its response could not be read.
	ErrUnavailable = errors.New("upstream unavailable")
	// ErrRejected marks responses where the upstream reported a failure.
	ErrRejected = errors.New("upstream rejected request")
)

// Envelope is the response wrapper used by every storefront API endpoint.
type Envelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

// APIError is a business failure: isSuccess=false or a non-2xx status.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s rejected request (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return ErrRejected }

func decodeEnvelope(service string, status int, raw []byte, out any) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if status < 200 || status > 299 {
			return &APIError{Service: service, StatusCode: status, Message: statusMessage(status, raw)}
		}
		return fmt.Errorf("%w: decode %s envelope: %w", ErrUnavailable, service, err)
	}

	if status < 200 || status > 299 || !env.IsSuccess {
		msg := env.Message
		if msg == "" {
			msg = statusMessage(status, nil)
		}
		return &APIError{Service: service, StatusCode: status, Message: msg}
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: %s envelope has no data", ErrUnavailable, service)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %w", ErrUnavailable, service, err)
	}
	return nil
}

func statusMessage(status int, raw []byte) string {
	if s := strings.TrimSpace(string(raw)); s != "" && len(s) <= 200 {
		return s
	}
	if t := http.StatusText(status); t != "" {
		return t
	}
	return "unexpected response"
}
