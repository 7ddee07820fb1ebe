package inforu

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
	"github.com/oggyb/whatsapp-relay/internal/provider"
)

// Statuses maps Inforu delivery StatusId values onto canonical statuses.
var Statuses = callback.StatusTable[int]{
	0:  callback.StatusProcessing,
	1:  callback.StatusSent,
	2:  callback.StatusDelivered,
	3:  callback.StatusRead,
	4:  callback.StatusClicked,
	-1: callback.StatusFailed,
	-2: callback.StatusDeliveryFailed,
	-4: callback.StatusBlocked,
}

var _ callback.Parser = (*CallbackParser)(nil)

// CallbackParser decodes Inforu delivery notifications and inbound messages.
type CallbackParser struct {
	incoming config.InboundFields
}

// NewCallbackParser returns a parser that reads inbound messages using the
// given candidate field names. Empty lists fall back to the defaults.
func NewCallbackParser(fields config.InboundFields) *CallbackParser {
	def := config.DefaultInforuIncoming
	if len(fields.Sender) == 0 {
		fields.Sender = def.Sender
	}
	if len(fields.Recipient) == 0 {
		fields.Recipient = def.Recipient
	}
	if len(fields.Message) == 0 {
		fields.Message = def.Message
	}
	return &CallbackParser{incoming: fields}
}

type deliveryRecord struct {
	Status            provider.FlexString `json:"Status"`
	StatusID          provider.FlexString `json:"StatusId"`
	StatusDescription string              `json:"StatusDescription"`
	PhoneNumber       provider.FlexString `json:"PhoneNumber"`
	CustomerMessageID provider.FlexString `json:"CustomerMessageId"`
	MessageID         provider.FlexString `json:"MessageId"`
	RequestID         provider.FlexString `json:"RequestId"`
	Timestamp         provider.FlexString `json:"Timestamp"`
}

// ParseDeliveryReports accepts a single JSON record or a non-empty array of
// them. Form-encoded pairs, as forwarded from a callback query string, are
// read as a single record.
func (p *CallbackParser) ParseDeliveryReports(body string, batchID, messageID int64) ([]callback.DeliveryReport, error) {
	var records []deliveryRecord
	if err := decodeOneOrMany([]byte(body), &records); err != nil {
		return nil, err
	}

	reports := make([]callback.DeliveryReport, 0, len(records))
	for _, r := range records {
		raw := r.StatusID
		if raw == "" {
			raw = r.Status
		}

		rep := callback.DeliveryReport{
			BatchID:           batchID,
			MessageID:         messageID,
			RawStatusMeaning:  raw.String(),
			DeliveryStatus:    callback.StatusUnknown,
			ProviderMessageID: firstNonEmpty(r.MessageID.String(), r.RequestID.String()),
			PhoneNumber:       r.PhoneNumber.String(),
			CorrelationID:     r.CustomerMessageID.String(),
			Timestamp:         r.Timestamp.String(),
		}
		if n, ok := raw.Int(); ok {
			rep.RawStatusMeaning = n
			rep.DeliveryStatus = Statuses.Lookup(n)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// ParseIncoming accepts a JSON object or array of objects. The inbound shape
// is undocumented, so each field is taken from the first candidate name that
// carries a non-empty value.
func (p *CallbackParser) ParseIncoming(body string) ([]callback.IncomingMessage, error) {
	var records []map[string]any
	if err := decodeOneOrMany([]byte(body), &records); err != nil {
		return nil, err
	}

	out := make([]callback.IncomingMessage, 0, len(records))
	for _, r := range records {
		out = append(out, callback.IncomingMessage{
			Sender:    pick(r, p.incoming.Sender),
			Recipient: pick(r, p.incoming.Recipient),
			Message:   pick(r, p.incoming.Message),
		})
	}
	return out, nil
}

func decodeOneOrMany[T any](body []byte, out *[]T) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", callback.ErrMalformedBody)
	}

	switch body[0] {
	case '[':
		if err := unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", callback.ErrMalformedBody, err)
		}
		if len(*out) == 0 {
			return fmt.Errorf("%w: no records", callback.ErrMalformedBody)
		}
		return nil
	case '{':
		var one T
		if err := unmarshal(body, &one); err != nil {
			return fmt.Errorf("%w: %v", callback.ErrMalformedBody, err)
		}
		*out = []T{one}
		return nil
	default:
		one, err := decodeForm[T](body)
		if err != nil {
			return err
		}
		*out = []T{one}
		return nil
	}
}

// decodeForm reads key=value pairs into T through their JSON form, so the
// same field names and FlexString handling apply.
func decodeForm[T any](body []byte) (T, error) {
	var one T
	if !bytes.ContainsRune(body, '=') {
		return one, fmt.Errorf("%w: not JSON", callback.ErrMalformedBody)
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return one, fmt.Errorf("%w: %v", callback.ErrMalformedBody, err)
	}

	fields := make(map[string]string, len(form))
	for k := range form {
		fields[k] = form.Get(k)
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return one, fmt.Errorf("%w: %v", callback.ErrMalformedBody, err)
	}
	if err := unmarshal(encoded, &one); err != nil {
		return one, fmt.Errorf("%w: %v", callback.ErrMalformedBody, err)
	}
	return one, nil
}

// unmarshal keeps numbers as json.Number so phone numbers sent unquoted are
// not rendered in exponent form. Anything after the first value is an error.
func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func pick(r map[string]any, names []string) string {
	for _, name := range names {
		var s string
		switch v := r[name].(type) {
		case string:
			s = v
		case json.Number:
			s = v.String()
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
