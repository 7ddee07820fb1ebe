package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oggyb/whatsapp-relay/internal/cache"
	"github.com/oggyb/whatsapp-relay/internal/provider"
)

// ErrTemplateNotFound is returned when no content template carries the
// requested friendly name.
var ErrTemplateNotFound = errors.New("twilio: content template not found")

const (
	lookupPageSize = 50
	// maxLookupPages stops a misbehaving next_page_url chain.
	maxLookupPages = 40
)

// ContentLookup resolves template friendly names to ContentSids through the
// Content API, optionally caching hits.
type ContentLookup struct {
	keySID     string
	keySecret  string
	url        string
	httpClient provider.HTTPClient
	timeout    time.Duration
	cache      cache.Cache
	ttl        time.Duration
	log        zerolog.Logger
}

type contentPage struct {
	Contents []struct {
		SID          string `json:"sid"`
		FriendlyName string `json:"friendly_name"`
	} `json:"contents"`
	Meta struct {
		NextPageURL string `json:"next_page_url"`
	} `json:"meta"`
}

// Resolve returns the ContentSid of the first template named name. Transport
// and decoding failures are wrapped as permanent: a failed lookup never
// falls through to a send.
func (l *ContentLookup) Resolve(ctx context.Context, name string) (string, error) {
	key := cache.TemplateSIDs.Key(name)
	if l.cache != nil {
		sid, err := l.cache.Get(ctx, key)
		switch {
		case err == nil && sid != "":
			return sid, nil
		case err != nil && !errors.Is(err, cache.ErrNotFound):
			l.log.Warn().Err(err).Str("template", name).Msg("template cache read failed")
		}
	}

	ctx, cancel := provider.WithTimeout(ctx, l.timeout)
	defer cancel()

	origin, err := url.Parse(l.url)
	if err != nil {
		return "", provider.WrapPermanent(fmt.Errorf("twilio: content lookup: bad url: %w", err))
	}

	next := fmt.Sprintf("%s?PageSize=%d", l.url, lookupPageSize)
	for page := 0; next != "" && page < maxLookupPages; page++ {
		p, err := l.fetch(ctx, next)
		if err != nil {
			return "", provider.WrapPermanent(fmt.Errorf("twilio: content lookup: %w", err))
		}
		for _, c := range p.Contents {
			if c.FriendlyName == name && c.SID != "" {
				l.remember(ctx, key, c.SID)
				return c.SID, nil
			}
		}

		if p.Meta.NextPageURL == "" {
			break
		}
		nextURL, err := sameOrigin(origin, p.Meta.NextPageURL)
		if err != nil {
			return "", provider.WrapPermanent(fmt.Errorf("twilio: content lookup: %w", err))
		}
		next = nextURL
	}

	return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
}

// sameOrigin resolves next against origin and refuses any other scheme or
// host, so the API key is only ever sent to the configured Content API.
func sameOrigin(origin *url.URL, next string) (string, error) {
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("bad page url: %w", err)
	}
	u = origin.ResolveReference(u)
	if !strings.EqualFold(u.Scheme, origin.Scheme) || !strings.EqualFold(u.Host, origin.Host) {
		return "", fmt.Errorf("next page %q is outside %s", u.Redacted(), origin.Host)
	}
	return u.String(), nil
}

func (l *ContentLookup) fetch(ctx context.Context, pageURL string) (*contentPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(l.keySID, l.keySecret)
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := provider.ReadBody(resp.Body, 1<<20)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	var p contentPage
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &p, nil
}

func (l *ContentLookup) remember(ctx context.Context, key, sid string) {
	if l.cache == nil || l.ttl <= 0 {
		return
	}
	if err := l.cache.Set(ctx, key, sid, l.ttl); err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("template cache write failed")
	}
}
