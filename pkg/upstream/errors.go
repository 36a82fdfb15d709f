package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrUnexpectedStatus is wrapped by errors for non-2xx upstream responses.
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 408 and 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassTimeout represents request timeouts, local or upstream (408, 504).
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassNetwork represents transport errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a 2xx response whose body could not be decoded.
	ErrorClassDecode ErrorClass = "decode"
)

// Error is returned by FetchPage for every failed page.
type Error struct {
	StatusCode int
	Class      ErrorClass
	Page       int
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s error on page %d (status %d): %v",
			e.Class, e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s error on page %d: %v", e.Class, e.Page, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to an error class.
// It returns "" for statuses that are not errors.
func classifyStatus(code int) ErrorClass {
	switch {
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return ErrorClassTimeout
	case code == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case code >= 400 && code < 500:
		return ErrorClassClient
	case code >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classifyErr maps a transport error to an error class.
func classifyErr(err error) ErrorClass {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}
	return ErrorClassNetwork
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassTimeout, ErrorClassNetwork:
		return true
	default:
		// 4xx and undecodable bodies fail the same way every time
		return false
	}
}
