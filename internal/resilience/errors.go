package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// TemporaryError marks a failure that is worth retrying: a scan source that
// is briefly unreadable, a broker reconnecting, a webhook answering 503.
type TemporaryError struct {
	Err        error
	StatusCode int
}

func (e *TemporaryError) Error() string {
	return e.Err.Error()
}

func (e *TemporaryError) Unwrap() error {
	return e.Err
}

// Temporary wraps err as retryable. statusCode is 0 when the failure did not
// come from an HTTP exchange.
func Temporary(err error, statusCode int) *TemporaryError {
	return &TemporaryError{Err: err, StatusCode: statusCode}
}

var temporaryErrnos = []error{
	syscall.ECONNRESET,
	syscall.ECONNREFUSED,
	syscall.ECONNABORTED,
	syscall.EAGAIN,
}

var temporaryMessages = []string{
	"connection reset by peer",
	"broken pipe",
	"i/o timeout",
	"no such host",
	"not connected",
	"network connection lost",
}

// IsTemporary reports whether err, or anything it wraps, is retryable.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var te *TemporaryError
	if errors.As(err, &te) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range temporaryErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	for _, m := range temporaryMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// IsTemporaryStatus reports whether an HTTP status is worth retrying.
func IsTemporaryStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
