package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrImportInProgress is returned when StartImport is called while a run is active.
	ErrImportInProgress = errors.New("import already in progress")
	// ErrMissingCredentials means no complete token triple has been captured yet.
	ErrMissingCredentials = errors.New("twitter tokens not captured")
	// ErrRateLimitExhausted is returned when the configured retry cap for 429s is hit.
	ErrRateLimitExhausted = errors.New("rate limit retries exhausted")
)

// APIError is a non-2xx response from the bookmarks API.
type APIError struct {
	Endpoint string
	Status   int
	Body     string
	Class    ErrorClass
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Failed to fetch data: %d - %s", e.Status, e.Body)
}

// ErrorClass categorizes Twitter API error responses.
type ErrorClass int

const (
	ClassNone          ErrorClass = iota
	ClassBanned                   // 88: rate limit abuse
	ClassSuspended                // 64: account suspended
	ClassLocked                   // 326: account locked
	ClassCSRF                     // 353: csrf token mismatch
	ClassAuthExpired              // 32: could not authenticate
	ClassBlocked                  // 161: blocked from performing action
	ClassNotAuthorized            // 179, 219: not authorized
	ClassInternal                 // 131: Twitter internal error
	ClassBadRequest               // 336: unknown or missing feature flags
)

func (c ErrorClass) String() string {
	switch c {
	case ClassBanned:
		return "banned"
	case ClassSuspended:
		return "suspended"
	case ClassLocked:
		return "locked"
	case ClassCSRF:
		return "csrf"
	case ClassAuthExpired:
		return "auth_expired"
	case ClassBlocked:
		return "blocked"
	case ClassNotAuthorized:
		return "not_authorized"
	case ClassInternal:
		return "internal"
	case ClassBadRequest:
		return "bad_request"
	}
	return "none"
}

// classifyError inspects a response body for known Twitter error codes.
func classifyError(body []byte) ErrorClass {
	var errResp struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return ClassNone
	}

	for _, e := range errResp.Errors {
		switch e.Code {
		case 88:
			return ClassBanned
		case 64:
			return ClassSuspended
		case 326:
			return ClassLocked
		case 353:
			return ClassCSRF
		case 32:
			return ClassAuthExpired
		case 161:
			return ClassBlocked
		case 179, 219:
			return ClassNotAuthorized
		case 131:
			return ClassInternal
		case 336:
			return ClassBadRequest
		}
	}
	return ClassNone
}

// parseRateLimitReset parses the x-rate-limit-reset unix timestamp header.
// The zero time is returned when it is missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Time{}
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
