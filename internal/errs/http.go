package errs

import (
	"net/http"
	"strings"
)

// FieldError points a validation failure at one request field, for example
// {"field": "startTime", "error": "must be a valid RFC3339 timestamp"}.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ActionType string

// ActionTypeRedirect asks the dashboard to navigate to Action.Value.
const ActionTypeRedirect ActionType = "redirect"

// Action is an optional hint for the dashboard, currently only used to send
// an expired session back to sign-in.
type Action struct {
	Type    ActionType `json:"type"`
	Message string     `json:"message"`
	Value   string     `json:"value"`
}

// HTTPError is the body every failed API call returns.
//
// Code is stable and machine readable (SLOT_UNAVAILABLE, BOOKING_NOT_FOUND).
// Message is only echoed verbatim when Override is set; otherwise the global
// error handler may swap it for the generic status text.
type HTTPError struct {
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Status   int          `json:"status"`
	Override bool         `json:"override"`
	Errors   []FieldError `json:"errors"`
	Action   *Action      `json:"action"`
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is matches any *HTTPError so callers can use errors.Is(err, &HTTPError{}).
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)
	return ok
}

// WithMessage copies e with a new message, leaving e untouched.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	clone := *e
	clone.Message = message
	return &clone
}

// CodeFromStatus turns a status into its default error code: 404 becomes
// NOT_FOUND and 429 becomes TOO_MANY_REQUESTS.
func CodeFromStatus(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}
