// Package callback holds the canonical shapes inbound provider webhooks are
// translated into.
package callback

import "errors"

var (
	// ErrInvalidCallback is returned when a callback URI does not start with
	// the configured callback base URL.
	ErrInvalidCallback = errors.New("invalid callback URI")
	// ErrMalformedBody is returned by parsers when a callback body cannot be
	// decoded in the provider's wire format.
	ErrMalformedBody = errors.New("malformed callback body")
)

// Status is the provider-agnostic delivery state.
type Status string

const (
	StatusProcessing     Status = "Processing"
	StatusSent           Status = "Sent"
	StatusDelivered      Status = "Delivered"
	StatusDeliveryFailed Status = "DeliveryFailed"
	StatusFailed         Status = "Failed"
	StatusRead           Status = "Read"
	StatusClicked        Status = "Clicked"
	StatusBlocked        Status = "Blocked"
	StatusUnknown        Status = "Unknown"
)

// StatusTable maps a provider's native status vocabulary onto Status.
type StatusTable[K comparable] map[K]Status

// Lookup returns the canonical status for native, or StatusUnknown.
func (t StatusTable[K]) Lookup(native K) Status {
	if s, ok := t[native]; ok {
		return s
	}
	return StatusUnknown
}

// Request is the raw inbound webhook as forwarded by the caller.
type Request struct {
	URI  string
	Body string
}

// DeliveryReport is one status record. BatchID and MessageID always come
// from the callback path.
type DeliveryReport struct {
	BatchID           int64  `json:"batchId"`
	MessageID         int64  `json:"messageId"`
	RawStatusMeaning  any    `json:"rawStatusMeaning"`
	DeliveryStatus    Status `json:"deliveryStatus"`
	ProviderMessageID string `json:"providerMessageId,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	CorrelationID     string `json:"correlationId,omitempty"`
	Timestamp         string `json:"timestamp,omitempty"`
	ErrorCode         string `json:"errorCode,omitempty"`
}

// IncomingMessage is a message sent to us by a WhatsApp user.
type IncomingMessage struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// HTTPResponse asks the caller to answer the webhook with a specific status.
type HTTPResponse struct {
	StatusCode int `json:"statusCode"`
}

// Result holds exactly one of the three translation outcomes.
type Result struct {
	DeliveryReports    []DeliveryReport  `json:"parsedDeliveryReports,omitempty"`
	IncomingMessages   []IncomingMessage `json:"parsedIncomingMessages,omitempty"`
	CustomHTTPResponse *HTTPResponse     `json:"customHttpResponse,omitempty"`
}

// BadRequest is the client-error marker returned for unparsable bodies.
func BadRequest() *Result {
	return &Result{CustomHTTPResponse: &HTTPResponse{StatusCode: 400}}
}

// Parser decodes a provider's webhook bodies.
type Parser interface {
	// ParseDeliveryReports decodes a status callback body. Implementations
	// return ErrMalformedBody when the body is not in their wire format.
	ParseDeliveryReports(body string, batchID, messageID int64) ([]DeliveryReport, error)

	// ParseIncoming decodes an incoming-message callback body.
	ParseIncoming(body string) ([]IncomingMessage, error)
}
