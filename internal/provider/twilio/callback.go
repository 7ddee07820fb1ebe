package twilio

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
)

// Statuses maps Twilio MessageStatus values onto canonical statuses.
var Statuses = callback.StatusTable[string]{
	"accepted":    callback.StatusProcessing,
	"queued":      callback.StatusProcessing,
	"sending":     callback.StatusProcessing,
	"scheduled":   callback.StatusProcessing,
	"sent":        callback.StatusSent,
	"delivered":   callback.StatusDelivered,
	"undelivered": callback.StatusDeliveryFailed,
	"failed":      callback.StatusFailed,
	"canceled":    callback.StatusFailed,
	"read":        callback.StatusRead,
}

var _ callback.Parser = CallbackParser{}

// CallbackParser decodes Twilio's form-encoded status and inbound webhooks.
type CallbackParser struct{}

// ParseDeliveryReports reads one status record. A record without
// MessageStatus (or the legacy SmsStatus) is reported as Unknown.
func (CallbackParser) ParseDeliveryReports(body string, batchID, messageID int64) ([]callback.DeliveryReport, error) {
	form, err := parseForm(body)
	if err != nil {
		return nil, err
	}

	status := firstValue(form, "MessageStatus", "SmsStatus")

	return []callback.DeliveryReport{{
		BatchID:           batchID,
		MessageID:         messageID,
		RawStatusMeaning:  status,
		DeliveryStatus:    Statuses.Lookup(strings.ToLower(status)),
		ProviderMessageID: firstValue(form, "MessageSid", "SmsSid"),
		PhoneNumber:       stripAddress(form.Get("To")),
		ErrorCode:         form.Get("ErrorCode"),
	}}, nil
}

// ParseIncoming reads one inbound message from From, To and Body. Absent
// fields are left empty.
func (CallbackParser) ParseIncoming(body string) ([]callback.IncomingMessage, error) {
	form, err := parseForm(body)
	if err != nil {
		return nil, err
	}

	return []callback.IncomingMessage{{
		Sender:    form.Get("From"),
		Recipient: form.Get("To"),
		Message:   form.Get("Body"),
	}}, nil
}

func parseForm(body string) (url.Values, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty body", callback.ErrMalformedBody)
	}
	form, err := url.ParseQuery(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", callback.ErrMalformedBody, err)
	}
	return form, nil
}

func firstValue(form url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(form.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func stripAddress(v string) string {
	if strings.HasPrefix(strings.ToLower(v), addressPrefix) {
		return v[len(addressPrefix):]
	}
	return v
}
