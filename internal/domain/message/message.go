// Package message holds the outbound message model, the per-message send
// result and the template directive that may be embedded in a message body.
package message

import (
	"fmt"
	"strings"
)

// Outbound is one message submitted by the internal caller. It is treated as
// immutable once handed to the send pipeline.
type Outbound struct {
	BatchID   int64  `json:"batchId"`
	MessageID int64  `json:"messageId"`
	Message   string `json:"message"`
	Recipient string `json:"recipient"`
	Sender    string `json:"sender,omitempty"`
}

// CallbackURL returns the per-message status callback of the form
// {base}/{batchId}/{messageId}. An empty base yields an empty URL.
func (m Outbound) CallbackURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/%d/%d", base, m.BatchID, m.MessageID)
}

// CorrelationID identifies the message towards providers that echo a
// customer-supplied reference back in delivery notifications.
func (m Outbound) CorrelationID() string {
	return fmt.Sprintf("%d_%d", m.BatchID, m.MessageID)
}

// SendResult is the outcome of one send attempt. Exactly one result is
// produced per Outbound, carrying the same batch and message ids.
type SendResult struct {
	BatchID           int64   `json:"batchId"`
	MessageID         int64   `json:"messageId"`
	SuccessfullySent  bool    `json:"successfullySent"`
	IsRetryable       bool    `json:"isRetryable"`
	ErrorMessage      *string `json:"errorMessage"`
	ProviderRequestID string  `json:"providerRequestId,omitempty"`
}

// Sent builds a successful result.
func Sent(m Outbound, providerRequestID string) SendResult {
	return SendResult{
		BatchID:           m.BatchID,
		MessageID:         m.MessageID,
		SuccessfullySent:  true,
		ProviderRequestID: providerRequestID,
	}
}

// Failed builds an unsuccessful result. retryable is advisory: the relay
// never retries on its own.
func Failed(m Outbound, retryable bool, errMsg string) SendResult {
	return SendResult{
		BatchID:      m.BatchID,
		MessageID:    m.MessageID,
		IsRetryable:  retryable,
		ErrorMessage: &errMsg,
	}
}

// Error returns the error message or an empty string.
func (r SendResult) Error() string {
	if r.ErrorMessage == nil {
		return ""
	}
	return *r.ErrorMessage
}
