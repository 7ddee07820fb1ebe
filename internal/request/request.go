package request

import (
	"bytes"
	"encoding/json"

	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
	"github.com/oggyb/whatsapp-relay/internal/domain/message"
)

// RelayRequest is the JSON body of the relay endpoint. A non-empty
// MessagesToSend takes precedence over RequestToParse.
type RelayRequest struct {
	MessagesToSend []message.Outbound `json:"messagesToSend"`
	// UniversalCallbackURL is the public base URL provider webhooks are
	// sent to. Falls back to CALLBACK_BASE_URL.
	UniversalCallbackURL string        `json:"universalCallbackUrl"`
	RequestToParse       *ParseRequest `json:"requestToParse"`
}

// ParseRequest is a provider webhook forwarded for translation.
type ParseRequest struct {
	URI string `json:"uri"`
	// Body is the raw webhook body, either as a JSON string or, for JSON
	// webhooks, inline.
	Body json.RawMessage `json:"body" swaggertype:"string"`
}

// BodyString returns the webhook body as text.
func (p ParseRequest) BodyString() string {
	raw := bytes.TrimSpace(p.Body)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// Callback converts the request to the translator's input.
func (p ParseRequest) Callback() callback.Request {
	return callback.Request{URI: p.URI, Body: p.BodyString()}
}
