package remote

import (
	"errors"
	"strings"
)

// ErrUnauthorized is returned when the API rejects the access token.
var ErrUnauthorized = errors.New("unauthorized: sign in again")

// Error carries the human-readable messages the API reported for a request.
type Error struct {
	Op       string
	Messages []string
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if msg == "" {
		msg = "request failed"
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

// Message returns the text suitable for showing to the user.
func (e *Error) Message() string {
	if len(e.Messages) == 0 {
		return "Something went wrong"
	}
	return strings.Join(e.Messages, "; ")
}

// FieldError is the {key, message} pair mutation payloads return.
type FieldError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// UserMessage extracts the message to display for err. API errors keep their
// server text; everything else is reported generically.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if errors.Is(err, ErrUnauthorized) {
		return ErrUnauthorized.Error()
	}
	return err.Error()
}

func payloadError(op string, errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	e := &Error{Op: op}
	for _, fe := range errs {
		if fe.Key != "" && fe.Key != "base" {
			e.Messages = append(e.Messages, fe.Key+": "+fe.Message)
			continue
		}
		e.Messages = append(e.Messages, fe.Message)
	}
	return e
}
