package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/whatsapp-relay/internal/domain/message"
)

// recordingProvider remembers which strategy the dispatcher picked.
type recordingProvider struct {
	strategy string
	callback string
	tpl      *message.Template
}

func (p *recordingProvider) Name() string { return "recording" }

func (p *recordingProvider) SendText(_ context.Context, msg message.Outbound, cb string) message.SendResult {
	p.strategy, p.callback = "text", cb
	return message.Sent(msg, "")
}

func (p *recordingProvider) SendTemplate(_ context.Context, msg message.Outbound, tpl *message.Template, cb string) message.SendResult {
	p.strategy, p.callback, p.tpl = "template", cb, tpl
	return message.Sent(msg, "")
}

func TestSend_Dispatch(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"template":{"name":"x"}}`, "template"},
		{`{"template":{"templateId":"7"}}`, "template"},
		{`hello`, "text"},
		{`{"text":"hello"}`, "text"},
		{`42`, "text"},
		{`{"template":null}`, "text"},
	}

	for _, tc := range tests {
		p := &recordingProvider{}
		msg := message.Outbound{BatchID: 1, MessageID: 2, Message: tc.body, Recipient: "+972500000000"}

		res := Send(context.Background(), p, msg, "https://cb.example.com/wa")

		assert.True(t, res.SuccessfullySent, tc.body)
		assert.Equal(t, tc.want, p.strategy, tc.body)
		assert.Equal(t, "https://cb.example.com/wa/1/2", p.callback, tc.body)
	}
}

func TestSend_TemplatePassedParsed(t *testing.T) {
	p := &recordingProvider{}
	msg := message.Outbound{Message: `{"template":{"name":"welcome"}}`}

	Send(context.Background(), p, msg, "")

	require.NotNil(t, p.tpl)
	assert.Equal(t, "welcome", p.tpl.Name)
	assert.Empty(t, p.callback)
}

func TestSend_NonObjectTemplateRejectedWithoutProvider(t *testing.T) {
	p := &recordingProvider{}
	msg := message.Outbound{BatchID: 5, MessageID: 6, Message: `{"template":"welcome"}`}

	res := Send(context.Background(), p, msg, "")

	assert.Empty(t, p.strategy)
	assert.False(t, res.SuccessfullySent)
	assert.False(t, res.IsRetryable)
	assert.Equal(t, message.ErrTemplateIDMissing.Error(), res.Error())
	assert.Equal(t, int64(6), res.MessageID)
}

func TestClassify(t *testing.T) {
	msg := message.Outbound{BatchID: 1, MessageID: 1}
	codes := RetryableCodes{30001}

	tests := []struct {
		name      string
		rep       Reply
		sent      bool
		retryable bool
	}{
		{"accepted", Reply{StatusCode: 201, SuccessCode: 201, Recognized: true, Accepted: true, RequestID: "SM1"}, true, false},
		{"recognized rejection", Reply{StatusCode: 201, SuccessCode: 201, Recognized: true, Description: "failed"}, false, false},
		{"recognized rejection with listed code", Reply{StatusCode: 200, SuccessCode: 200, Recognized: true, Code: 30001}, false, true},
		{"unexpected 2xx", Reply{StatusCode: 200, SuccessCode: 201}, false, true},
		{"accepted but wrong http", Reply{StatusCode: 200, SuccessCode: 201, Recognized: true, Accepted: true}, false, false},
		{"server error", Reply{StatusCode: 503, SuccessCode: 201}, false, true},
		{"too many requests", Reply{StatusCode: 429, SuccessCode: 201}, false, true},
		{"client error", Reply{StatusCode: 400, SuccessCode: 201, Code: 21211}, false, false},
		{"client error with listed code", Reply{StatusCode: 400, SuccessCode: 201, Code: 30001}, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Classify(msg, tc.rep, codes)
			assert.Equal(t, tc.sent, res.SuccessfullySent)
			assert.Equal(t, tc.retryable, res.IsRetryable)
			if tc.sent {
				assert.Equal(t, tc.rep.RequestID, res.ProviderRequestID)
				assert.Nil(t, res.ErrorMessage)
			} else {
				assert.NotEmpty(t, res.Error())
			}
		})
	}
}

func TestReplyReason(t *testing.T) {
	assert.Equal(t, "bad number (code 21211)", Reply{Description: "bad number", Code: 21211}.reason())
	assert.Equal(t, "bad number", Reply{Description: " bad number "}.reason())
	assert.Equal(t, "provider returned code -3 (http 200)", Reply{StatusCode: 200, Code: -3}.reason())
	assert.Equal(t, "provider returned http 502", Reply{StatusCode: http.StatusBadGateway}.reason())
}

func TestWrapErrors(t *testing.T) {
	base := errors.New("dial tcp: timeout")

	transient := WrapTransient(base)
	assert.True(t, IsRetryable(transient))
	assert.Contains(t, transient.Error(), base.Error())

	permanent := WrapPermanent(base)
	assert.False(t, IsRetryable(permanent))
	assert.ErrorIs(t, permanent, ErrPermanent)

	assert.ErrorIs(t, WrapTransient(nil), ErrTransient)
	assert.ErrorIs(t, WrapPermanent(nil), ErrPermanent)

	res := FromError(message.Outbound{MessageID: 3}, transient)
	assert.True(t, res.IsRetryable)
	assert.Equal(t, int64(3), res.MessageID)
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x1","b":42,"c":null}`), &v))

	assert.Equal(t, "x1", v.A.String())
	assert.Equal(t, "42", v.B.String())
	assert.Empty(t, v.C.String())

	n, ok := v.B.Int()
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = v.A.Int()
	assert.False(t, ok)
}
