package twilio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
)

func TestParseDeliveryReports(t *testing.T) {
	body := "MessageSid=SM1&MessageStatus=delivered&To=whatsapp%3A%2B972501234567&From=whatsapp%3A%2B14155550100&ErrorCode="

	reports, err := CallbackParser{}.ParseDeliveryReports(body, 42, 7)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, callback.DeliveryReport{
		BatchID:           42,
		MessageID:         7,
		RawStatusMeaning:  "delivered",
		DeliveryStatus:    callback.StatusDelivered,
		ProviderMessageID: "SM1",
		PhoneNumber:       "+972501234567",
	}, reports[0])
}

func TestParseDeliveryReports_ErrorCodeAndLegacyFields(t *testing.T) {
	reports, err := CallbackParser{}.ParseDeliveryReports("SmsSid=SM2&SmsStatus=undelivered&ErrorCode=63016", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, callback.StatusDeliveryFailed, reports[0].DeliveryStatus)
	assert.Equal(t, "SM2", reports[0].ProviderMessageID)
	assert.Equal(t, "63016", reports[0].ErrorCode)
}

func TestParseDeliveryReports_UnknownStatus(t *testing.T) {
	reports, err := CallbackParser{}.ParseDeliveryReports("MessageStatus=partially_delivered", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, callback.StatusUnknown, reports[0].DeliveryStatus)
	assert.Equal(t, "partially_delivered", reports[0].RawStatusMeaning)
}

func TestParseDeliveryReports_Malformed(t *testing.T) {
	for _, body := range []string{"", "  ", "%zz=1", "MessageStatus=sent&x=%"} {
		_, err := CallbackParser{}.ParseDeliveryReports(body, 1, 2)
		assert.ErrorIs(t, err, callback.ErrMalformedBody, body)
	}
}

func TestParseDeliveryReports_MissingStatusIsUnknown(t *testing.T) {
	reports, err := CallbackParser{}.ParseDeliveryReports("MessageSid=SM1&To=whatsapp%3A%2B1", 42, 7)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, callback.DeliveryReport{
		BatchID:           42,
		MessageID:         7,
		RawStatusMeaning:  "",
		DeliveryStatus:    callback.StatusUnknown,
		ProviderMessageID: "SM1",
		PhoneNumber:       "+1",
	}, reports[0])
}

func TestStatusTable(t *testing.T) {
	tests := map[string]callback.Status{
		"accepted":    callback.StatusProcessing,
		"queued":      callback.StatusProcessing,
		"sending":     callback.StatusProcessing,
		"sent":        callback.StatusSent,
		"delivered":   callback.StatusDelivered,
		"undelivered": callback.StatusDeliveryFailed,
		"failed":      callback.StatusFailed,
		"read":        callback.StatusRead,
		"receiving":   callback.StatusUnknown,
	}
	for native, want := range tests {
		assert.Equal(t, want, Statuses.Lookup(native), native)
	}
}

func TestParseIncoming(t *testing.T) {
	msgs, err := CallbackParser{}.ParseIncoming("From=whatsapp%3A%2B972501234567&To=whatsapp%3A%2B14155550100&Body=Hi+there")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, callback.IncomingMessage{
		Sender:    "whatsapp:+972501234567",
		Recipient: "whatsapp:+14155550100",
		Message:   "Hi there",
	}, msgs[0])

	_, err = CallbackParser{}.ParseIncoming("%zz")
	assert.ErrorIs(t, err, callback.ErrMalformedBody)
}

func TestParseIncoming_MissingFieldsStayEmpty(t *testing.T) {
	msgs, err := CallbackParser{}.ParseIncoming("To=whatsapp%3A%2B1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, callback.IncomingMessage{Recipient: "whatsapp:+1"}, msgs[0])
}
