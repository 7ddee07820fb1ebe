package inforu

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/domain/message"
	"github.com/oggyb/whatsapp-relay/internal/provider"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()

	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.InforuConfig{Username: "user", Token: "token", RetryableStatusIDs: []int{-9}}
	return New(cfg, zerolog.Nop(), WithEndpoint(srv.URL), WithHTTPClient(srv.Client())), &calls
}

func templateMessage() message.Outbound {
	return message.Outbound{
		BatchID:   42,
		MessageID: 7,
		Recipient: "whatsapp:+972501234567",
		Message: `{"template":{"templateId":"123","components":[
			{"type":"header","parameters":[{"type":"text","text":"ignored"}]},
			{"type":"body","parameters":[
				{"type":"text","text":"Dana"},
				{"type":"image","text":"skip"},
				{"type":"text","text":"0501234567","valueType":"Contact"}
			]}],
			"recipientData":{"firstName":"Dana","lastName":"Levi","City":"Haifa"}}}`,
	}
}

func TestSendTemplate_WireFormat(t *testing.T) {
	var got map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "token", pass)

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"StatusId":1,"StatusDescription":"Success","RequestId":"req-1"}`))
	})

	res := provider.Send(context.Background(), client, templateMessage(), "https://relay.example.com/cb/")

	require.True(t, res.SuccessfullySent, res.Error())
	assert.Equal(t, "req-1", res.ProviderRequestID)
	assert.Equal(t, int64(42), res.BatchID)
	assert.Equal(t, int64(7), res.MessageID)

	data := got["Data"].(map[string]any)
	assert.Equal(t, "123", data["TemplateId"])
	assert.Equal(t, "https://relay.example.com/cb/42/7", data["DeliveryNotificationUrl"])
	assert.Equal(t, "42_7", data["CustomerMessageId"])

	params := data["TemplateParameters"].([]any)
	require.Len(t, params, 2)
	assert.Equal(t, map[string]any{"Name": "[#1#]", "Type": "Text", "Value": "Dana"}, params[0])
	assert.Equal(t, map[string]any{"Name": "[#3#]", "Type": "Contact", "Value": "0501234567"}, params[1])

	recipients := data["Recipients"].([]any)
	require.Len(t, recipients, 1)
	assert.Equal(t, map[string]any{
		"Phone":     "+972501234567",
		"FirstName": "Dana",
		"LastName":  "Levi",
		"City":      "Haifa",
	}, recipients[0])
}

func TestSendTemplate_Classification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		sent      bool
		retryable bool
		errMsg    string
	}{
		{"rejected", http.StatusOK, `{"StatusId":-3,"StatusDescription":"Failed","DetailedDescription":"Template not approved"}`, false, false, "Template not approved (code -3)"},
		{"listed status id", http.StatusOK, `{"StatusId":-9,"StatusDescription":"Queue full"}`, false, true, "Queue full (code -9)"},
		{"unrecognized 2xx", http.StatusOK, `<html>ok</html>`, false, true, "provider returned http 200"},
		{"server error", http.StatusBadGateway, ``, false, true, "provider returned http 502"},
		{"client error", http.StatusUnauthorized, `{"StatusId":-2,"StatusDescription":"Unauthorized"}`, false, false, "Unauthorized (code -2)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			res := provider.Send(context.Background(), client, templateMessage(), "")

			assert.Equal(t, tc.sent, res.SuccessfullySent)
			assert.Equal(t, tc.retryable, res.IsRetryable)
			assert.Equal(t, tc.errMsg, res.Error())
		})
	}
}

func TestSendTemplate_NetworkFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := New(config.InforuConfig{Username: "u", Token: "t"}, zerolog.Nop(), WithEndpoint(url))
	res := provider.Send(context.Background(), client, templateMessage(), "")

	assert.False(t, res.SuccessfullySent)
	assert.True(t, res.IsRetryable)
	assert.Contains(t, res.Error(), "inforu: http do")
}

func TestRejectionsNeverCallTheAPI(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"plain text", "hello", errNotJSON},
		{"json without template", `{"text":"hello"}`, errNoTemplateField},
		{"name only template", `{"template":{"name":"x"}}`, errNoTemplateID},
		{"non-object template", `{"template":"x"}`, message.ErrTemplateIDMissing.Error()},
		{"malformed template", `{"template":{"components":"oops"}}`, message.ErrMalformedTemplate.Error()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			msg := message.Outbound{BatchID: 1, MessageID: 2, Message: tc.body, Recipient: "+972500000000"}
			res := provider.Send(context.Background(), client, msg, "https://cb.example.com")

			assert.False(t, res.SuccessfullySent)
			assert.False(t, res.IsRetryable)
			assert.Equal(t, tc.want, res.Error())
			assert.Zero(t, atomic.LoadInt32(calls))
		})
	}
}

func TestSendTemplate_EmptyParametersEncodeAsArray(t *testing.T) {
	var raw map[string]json.RawMessage
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Data map[string]json.RawMessage `json:"Data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw = body.Data
		_, _ = w.Write([]byte(`{"StatusId":1}`))
	})

	msg := message.Outbound{Message: `{"template":{"templateId":"9"}}`, Recipient: "+1"}
	res := provider.Send(context.Background(), client, msg, "")

	require.True(t, res.SuccessfullySent)
	assert.JSONEq(t, `[]`, string(raw["TemplateParameters"]))
	assert.JSONEq(t, `""`, string(raw["DeliveryNotificationUrl"]))
}
