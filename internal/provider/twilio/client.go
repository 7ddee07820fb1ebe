// Package twilio implements the Twilio WhatsApp adapter: free-form sends and
// content-template sends through the Messages API, with template names
// resolved through the Content API.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/cache"
	"github.com/oggyb/whatsapp-relay/internal/config"
	"github.com/oggyb/whatsapp-relay/internal/domain/message"
	"github.com/oggyb/whatsapp-relay/internal/provider"
)

const (
	// Name identifies the provider in logs and metrics.
	Name = "twilio"

	DefaultBaseURL    = "https://api.twilio.com/2010-04-01"
	DefaultContentURL = "https://content.twilio.com/v1/Content"

	addressPrefix = "whatsapp:"
)

var _ provider.Provider = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for sends and lookups.
func WithHTTPClient(hc provider.HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL sets the base Twilio API URL. Useful for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.baseURL = u
		}
	}
}

// WithContentURL sets the Content API list URL.
func WithContentURL(u string) Option {
	return func(c *Client) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			c.contentURL = u
		}
	}
}

// WithTemplateCache caches resolved ContentSids for ttl.
func WithTemplateCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache, c.cacheTTL = store, ttl
	}
}

// WithRequestTimeout bounds each call when the caller's context has no
// deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Client sends WhatsApp messages through Twilio.
type Client struct {
	accountSID string
	authToken  string
	sender     string
	baseURL    string
	contentURL string
	retryable  provider.RetryableCodes
	httpClient provider.HTTPClient
	timeout    time.Duration
	cache      cache.Cache
	cacheTTL   time.Duration
	lookup     *ContentLookup
	log        zerolog.Logger
}

// New builds a Client from cfg.
func New(cfg config.TwilioConfig, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		sender:     formatAddress(cfg.Sender),
		baseURL:    DefaultBaseURL,
		contentURL: DefaultContentURL,
		retryable:  provider.RetryableCodes(cfg.RetryableErrorCodes),
		timeout:    20 * time.Second,
		log:        log.With().Str("provider", Name).Logger(),
	}
	WithBaseURL(cfg.BaseURL)(c)
	WithContentURL(cfg.ContentURL)(c)

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.httpClient == nil {
		c.httpClient = provider.NewHTTPClient(c.timeout)
	}

	c.lookup = &ContentLookup{
		keySID:     cfg.APIKeySID,
		keySecret:  cfg.APIKeySecret,
		url:        c.contentURL,
		httpClient: c.httpClient,
		timeout:    c.timeout,
		cache:      c.cache,
		ttl:        c.cacheTTL,
		log:        c.log,
	}
	return c
}

func (c *Client) Name() string { return Name }

// SendText sends msg.Message verbatim as the Body.
func (c *Client) SendText(ctx context.Context, msg message.Outbound, statusCallback string) message.SendResult {
	form, res, ok := c.baseForm(msg, statusCallback)
	if !ok {
		return res
	}
	form.Set("Body", msg.Message)
	return c.post(ctx, msg, form)
}

// SendTemplate sends a content template. templateId is used as the
// ContentSid; without it the template is looked up by name.
func (c *Client) SendTemplate(ctx context.Context, msg message.Outbound, tpl *message.Template, statusCallback string) message.SendResult {
	if tpl == nil || (tpl.TemplateID == "" && tpl.Name == "") {
		return message.Failed(msg, false, message.ErrTemplateIDMissing.Error())
	}

	form, res, ok := c.baseForm(msg, statusCallback)
	if !ok {
		return res
	}

	sid := tpl.TemplateID
	if sid == "" {
		var err error
		sid, err = c.lookup.Resolve(ctx, tpl.Name)
		if err != nil {
			c.log.Warn().Err(err).Str("template", tpl.Name).Int64("message_id", msg.MessageID).Msg("template lookup failed")
			if errors.Is(err, ErrTemplateNotFound) {
				return message.Failed(msg, false, err.Error())
			}
			return provider.FromError(msg, err)
		}
		c.log.Debug().Str("template", tpl.Name).Str("content_sid", sid).Msg("template resolved")
	}
	form.Set("ContentSid", sid)

	if vars := contentVariables(tpl); len(vars) > 0 {
		encoded, err := json.Marshal(vars)
		if err != nil {
			return message.Failed(msg, false, fmt.Sprintf("twilio: encode content variables: %v", err))
		}
		form.Set("ContentVariables", string(encoded))
	}

	return c.post(ctx, msg, form)
}

func (c *Client) baseForm(msg message.Outbound, statusCallback string) (url.Values, message.SendResult, bool) {
	to := formatAddress(msg.Recipient)
	if to == "" {
		return nil, message.Failed(msg, false, "twilio: recipient is required"), false
	}
	from := formatAddress(msg.Sender)
	if from == "" {
		from = c.sender
	}
	if from == "" {
		return nil, message.Failed(msg, false, "twilio: sender is required"), false
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", from)
	if statusCallback != "" {
		form.Set("StatusCallback", statusCallback)
	}
	return form, message.SendResult{}, true
}

type sendResponse struct {
	SID          string              `json:"sid"`
	Status       provider.FlexString `json:"status"`
	Code         *int                `json:"code"`
	Message      string              `json:"message"`
	ErrorCode    *int                `json:"error_code"`
	ErrorMessage string              `json:"error_message"`
}

func (c *Client) post(ctx context.Context, msg message.Outbound, form url.Values) message.SendResult {
	ctx, cancel := provider.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.accountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return message.Failed(msg, false, fmt.Sprintf("twilio: new request: %v", err))
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Int64("batch_id", msg.BatchID).Int64("message_id", msg.MessageID).Msg("send request failed")
		return provider.FromError(msg, provider.WrapTransient(fmt.Errorf("twilio: http do: %w", err)))
	}
	defer resp.Body.Close()

	raw, err := provider.ReadBody(resp.Body, provider.DefaultBodyLimit)
	if err != nil {
		return provider.FromError(msg, provider.WrapTransient(fmt.Errorf("twilio: %w", err)))
	}

	res := provider.Classify(msg, parseReply(resp.StatusCode, raw), c.retryable)
	c.log.Debug().
		Int64("batch_id", msg.BatchID).
		Int64("message_id", msg.MessageID).
		Int("http_status", resp.StatusCode).
		Bool("sent", res.SuccessfullySent).
		Bool("retryable", res.IsRetryable).
		Msg("message send")
	return res
}

func parseReply(statusCode int, raw []byte) provider.Reply {
	rep := provider.Reply{StatusCode: statusCode, SuccessCode: http.StatusCreated}

	var body sendResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return rep
	}

	status := strings.ToLower(body.Status.String())
	rep.Recognized = status != ""
	rep.Accepted = status == "queued" || status == "accepted"
	rep.RequestID = body.SID

	switch {
	case body.Code != nil:
		rep.Code = *body.Code
	case body.ErrorCode != nil:
		rep.Code = *body.ErrorCode
	}
	rep.Description = body.Message
	if rep.Description == "" {
		rep.Description = body.ErrorMessage
	}
	if rep.Description == "" && rep.Recognized && !rep.Accepted {
		rep.Description = "message " + status
	}
	return rep
}

// contentVariables keys each body text parameter by its 1-based position.
func contentVariables(tpl *message.Template) map[string]string {
	params := tpl.BodyParameters()
	if len(params) == 0 {
		return nil
	}
	vars := make(map[string]string, len(params))
	for _, p := range params {
		vars[strconv.Itoa(p.Index)] = p.Text
	}
	return vars
}

func formatAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(trimmed), addressPrefix) {
		trimmed = strings.TrimSpace(trimmed[len(addressPrefix):])
	}
	if trimmed == "" {
		return ""
	}
	return addressPrefix + trimmed
}
