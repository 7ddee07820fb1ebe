// Package inforu implements the Inforu WhatsApp adapter. Inforu only accepts
// pre-approved templates, so free-form text is rejected before any network
// call.
package inforu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/domain/message"
	"github.com/oggyb/whatsapp-relay/internal/provider"
)

const (
	// Name identifies the provider in logs and metrics.
	Name = "inforu"

	// DefaultAPIURL is the SendWhatsApp endpoint of the v2 API.
	DefaultAPIURL = "https://capi.inforu.co.il/api/v2/WhatsApp/SendWhatsApp"

	statusAccepted = 1
)

// Rejection messages for sends that never reach the API.
const (
	errNotJSON         = "Inforu requires template messages for initial contact. Message must be JSON with template field."
	errNoTemplateField = "Message must contain template field for Inforu WhatsApp"
	errNoTemplateID    = "Template must contain templateId"
)

var _ provider.Provider = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used to talk to Inforu.
func WithHTTPClient(hc provider.HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoint overrides the SendWhatsApp URL. Useful for tests.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url = strings.TrimSpace(url); url != "" {
			c.endpoint = url
		}
	}
}

// WithRequestTimeout bounds each send when the caller's context has no
// deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Client sends template messages through the Inforu API.
type Client struct {
	username   string
	token      string
	endpoint   string
	retryable  provider.RetryableCodes
	httpClient provider.HTTPClient
	timeout    time.Duration
	log        zerolog.Logger
}

// New builds a Client from cfg.
func New(cfg config.InforuConfig, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		username:  cfg.Username,
		token:     cfg.Token,
		endpoint:  DefaultAPIURL,
		retryable: provider.RetryableCodes(cfg.RetryableStatusIDs),
		timeout:   20 * time.Second,
		log:       log.With().Str("provider", Name).Logger(),
	}
	if cfg.APIURL != "" {
		c.endpoint = cfg.APIURL
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.httpClient == nil {
		c.httpClient = provider.NewHTTPClient(c.timeout)
	}
	return c
}

func (c *Client) Name() string { return Name }

// SendText rejects the message: Inforu needs a template for initial contact.
func (c *Client) SendText(_ context.Context, msg message.Outbound, _ string) message.SendResult {
	if !json.Valid([]byte(msg.Message)) {
		return message.Failed(msg, false, errNotJSON)
	}
	return message.Failed(msg, false, errNoTemplateField)
}

// SendTemplate posts the template to SendWhatsApp. Only templateId is
// accepted; Inforu has no lookup by name.
func (c *Client) SendTemplate(ctx context.Context, msg message.Outbound, tpl *message.Template, statusCallback string) message.SendResult {
	if tpl == nil || tpl.TemplateID == "" {
		return message.Failed(msg, false, errNoTemplateID)
	}

	body, err := json.Marshal(sendRequest{Data: buildData(msg, tpl, statusCallback)})
	if err != nil {
		return message.Failed(msg, false, fmt.Sprintf("inforu: encode request: %v", err))
	}

	ctx, cancel := provider.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return message.Failed(msg, false, fmt.Sprintf("inforu: new request: %v", err))
	}
	req.SetBasicAuth(c.username, c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Int64("batch_id", msg.BatchID).Int64("message_id", msg.MessageID).Msg("send request failed")
		return provider.FromError(msg, provider.WrapTransient(fmt.Errorf("inforu: http do: %w", err)))
	}
	defer resp.Body.Close()

	raw, err := provider.ReadBody(resp.Body, provider.DefaultBodyLimit)
	if err != nil {
		return provider.FromError(msg, provider.WrapTransient(fmt.Errorf("inforu: %w", err)))
	}

	res := provider.Classify(msg, parseReply(resp.StatusCode, raw), c.retryable)
	c.log.Debug().
		Int64("batch_id", msg.BatchID).
		Int64("message_id", msg.MessageID).
		Int("http_status", resp.StatusCode).
		Bool("sent", res.SuccessfullySent).
		Bool("retryable", res.IsRetryable).
		Msg("template send")
	return res
}

type sendRequest struct {
	Data sendData `json:"Data"`
}

type sendData struct {
	TemplateID              string              `json:"TemplateId"`
	TemplateParameters      []templateParameter `json:"TemplateParameters"`
	Recipients              []map[string]any    `json:"Recipients"`
	DeliveryNotificationURL string              `json:"DeliveryNotificationUrl"`
	CustomerMessageID       string              `json:"CustomerMessageId"`
}

type templateParameter struct {
	Name  string `json:"Name"`
	Type  string `json:"Type"`
	Value string `json:"Value"`
}

type sendResponse struct {
	StatusID            *int                `json:"StatusId"`
	StatusDescription   string              `json:"StatusDescription"`
	DetailedDescription string              `json:"DetailedDescription"`
	RequestID           provider.FlexString `json:"RequestId"`
}

func buildData(msg message.Outbound, tpl *message.Template, statusCallback string) sendData {
	params := make([]templateParameter, 0)
	for _, p := range tpl.BodyParameters() {
		typ := p.ValueType
		if typ == "" {
			typ = "Text"
		}
		params = append(params, templateParameter{
			Name:  fmt.Sprintf("[#%d#]", p.Index),
			Type:  typ,
			Value: p.Text,
		})
	}

	recipient := map[string]any{
		"Phone":     strings.TrimPrefix(msg.Recipient, "whatsapp:"),
		"FirstName": tpl.RecipientString("firstName"),
		"LastName":  tpl.RecipientString("lastName"),
	}
	for k, v := range tpl.RecipientData {
		if k == "firstName" || k == "lastName" {
			continue
		}
		recipient[k] = v
	}

	return sendData{
		TemplateID:              tpl.TemplateID,
		TemplateParameters:      params,
		Recipients:              []map[string]any{recipient},
		DeliveryNotificationURL: statusCallback,
		CustomerMessageID:       msg.CorrelationID(),
	}
}

func parseReply(statusCode int, raw []byte) provider.Reply {
	rep := provider.Reply{StatusCode: statusCode, SuccessCode: http.StatusOK}

	var body sendResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.StatusID == nil {
		return rep
	}

	rep.Recognized = true
	rep.Accepted = *body.StatusID == statusAccepted
	rep.Code = *body.StatusID
	rep.RequestID = body.RequestID.String()
	rep.Description = body.DetailedDescription
	if rep.Description == "" {
		rep.Description = body.StatusDescription
	}
	return rep
}
