package api

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

const maxErrorBody = 256

var (
	ErrNetwork      = errors.New("no response from API")
	ErrUnauthorized = errors.New("unauthorized: API token invalid or missing")
	ErrUpstream     = errors.New("API returned an error status")
	ErrUnknown      = errors.New("unknown API failure")
	ErrNotFound     = errors.New("resource not found")
	ErrRateLimited  = errors.New("rate limited by API")
)

// ErrorCode is the machine-readable class of a FetchError.
type ErrorCode string

const (
	CodeNetwork      ErrorCode = "network"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeUpstream     ErrorCode = "upstream"
	CodeDecode       ErrorCode = "decode"
	CodeUnknown      ErrorCode = "unknown"
)

// FetchError is returned by every HTTPClient call that fails.
// Status is zero when no response was received.
type FetchError struct {
	Code    ErrorCode
	Message string
	Status  int
	Err     error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Code, e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets callers match a FetchError against the package sentinels with errors.Is.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Code == CodeNetwork
	case ErrUnauthorized:
		return e.Code == CodeUnauthorized
	case ErrUpstream:
		return e.Code == CodeUpstream
	case ErrUnknown:
		return e.Code == CodeUnknown || e.Code == CodeDecode
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}

// classifyStatus builds the error for a non-2xx response.
func classifyStatus(status int, body []byte) *FetchError {
	if status == http.StatusUnauthorized {
		return &FetchError{
			Code:    CodeUnauthorized,
			Message: "API token invalid or missing, some endpoints require authentication",
			Status:  status,
		}
	}

	msg := string(truncateBody(body, maxErrorBody))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &FetchError{Code: CodeUpstream, Message: msg, Status: status}
}

// truncateBody cuts body to at most n bytes without splitting a UTF-8 sequence.
func truncateBody(body []byte, n int) []byte {
	if len(body) <= n {
		return body
	}
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return body[:n]
}
