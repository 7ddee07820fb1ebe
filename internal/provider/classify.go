package provider

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/oggyb/whatsapp-relay/internal/domain/message"
)

// Reply is a provider HTTP response reduced to what classification needs.
type Reply struct {
	// StatusCode is the HTTP status of the reply.
	StatusCode int
	// SuccessCode is the HTTP status the provider answers accepted sends with.
	SuccessCode int
	// Recognized is set when the body carried a provider status the adapter
	// understands.
	Recognized bool
	// Accepted is set when that provider status means the message was queued.
	Accepted bool
	// Code is the provider's numeric error code or status id, 0 when absent.
	Code int
	// Description is the provider's human readable reason.
	Description string
	// RequestID is the provider's id for the accepted send.
	RequestID string
}

// RetryableCodes lists provider codes that signal a transient condition
// such as exhausted funds or a full queue.
type RetryableCodes []int

// Contains reports whether code is listed.
func (r RetryableCodes) Contains(code int) bool {
	return code != 0 && slices.Contains(r, code)
}

// Classify turns a reply into a SendResult:
//   - expected success status and an accepted provider status: sent;
//   - 2xx with a recognized, non-accepted provider status: rejected, retryable
//     only when the code is listed in retryable;
//   - any other 2xx: retryable;
//   - non-2xx: retryable for listed codes, 5xx and 429, otherwise rejected.
func Classify(msg message.Outbound, rep Reply, retryable RetryableCodes) message.SendResult {
	ok2xx := rep.StatusCode >= 200 && rep.StatusCode < 300

	switch {
	case rep.StatusCode == rep.SuccessCode && rep.Accepted:
		return message.Sent(msg, rep.RequestID)

	case ok2xx && rep.Recognized:
		return message.Failed(msg, retryable.Contains(rep.Code), rep.reason())

	case ok2xx:
		return message.Failed(msg, true, rep.reason())

	default:
		retry := retryable.Contains(rep.Code) ||
			rep.StatusCode >= http.StatusInternalServerError ||
			rep.StatusCode == http.StatusTooManyRequests
		return message.Failed(msg, retry, rep.reason())
	}
}

func (r Reply) reason() string {
	desc := strings.TrimSpace(r.Description)
	switch {
	case desc != "" && r.Code != 0:
		return fmt.Sprintf("%s (code %d)", desc, r.Code)
	case desc != "":
		return desc
	case r.Code != 0:
		return fmt.Sprintf("provider returned code %d (http %d)", r.Code, r.StatusCode)
	default:
		return fmt.Sprintf("provider returned http %d", r.StatusCode)
	}
}
