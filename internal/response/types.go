package response

import (
	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
	"github.com/oggyb/whatsapp-relay/internal/domain/message"
)

// RelayVersion is the version tag of relay responses.
const RelayVersion = "1"

type WelcomePayload struct {
	Message string `json:"message"`
}

type HealthPayload struct {
	Status string `json:"status"`
}

type WelcomeResponse struct {
	Success   bool           `json:"success"`
	Data      WelcomePayload `json:"data"`
	Timestamp string         `json:"timestamp"`
}

type HealthResponse struct {
	Success   bool          `json:"success"`
	Data      HealthPayload `json:"data"`
	Timestamp string        `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

// RelayPayload is the body of a successful relay call. At most one of the
// result fields is set.
type RelayPayload struct {
	Version              string               `json:"version"`
	SentMessagesResults  []message.SendResult `json:"sentMessagesResults,omitempty"`
	ParsedRequestResults *callback.Result     `json:"parsedRequestResults,omitempty"`
}
