package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/curiomarket/appraise-cli/pkg/vision"
)

// IsTransient reports whether an error is safe to retry: reasoning-service
// unavailability (timeout, 429, 5xx), empty model responses, or common
// network-level failures. Schema violations and invalid input are never
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if vision.IsRetryable(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP transports.
	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	}
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
