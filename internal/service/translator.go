package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oggyb/whatsapp-relay/internal/domain/callback"
)

// Translate turns one forwarded webhook into delivery reports or incoming
// messages. URIs whose path starts with two integer segments
// ({base}/{batchId}/{messageId}) are status callbacks; anything else is an
// incoming message. An empty body falls back to the URI query string.
//
// ErrInvalidCallback is returned when uri is outside base. Bodies the parser
// cannot decode yield the 400 marker instead of an error.
func Translate(parser callback.Parser, req callback.Request, base string) (*callback.Result, error) {
	if base == "" || !strings.HasPrefix(req.URI, base) {
		return nil, fmt.Errorf("%w: %q", callback.ErrInvalidCallback, req.URI)
	}

	path, query, hasQuery := strings.Cut(req.URI[len(base):], "?")

	body := req.Body
	if strings.TrimSpace(body) == "" {
		if !hasQuery || query == "" {
			return callback.BadRequest(), nil
		}
		body = query
	}

	if batchID, messageID, ok := statusPath(path); ok {
		reports, err := parser.ParseDeliveryReports(body, batchID, messageID)
		if err != nil {
			return malformed(err)
		}
		return &callback.Result{DeliveryReports: reports}, nil
	}

	msgs, err := parser.ParseIncoming(body)
	if err != nil {
		return malformed(err)
	}
	return &callback.Result{IncomingMessages: msgs}, nil
}

func statusPath(path string) (batchID, messageID int64, ok bool) {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	if len(segs) < 2 {
		return 0, 0, false
	}

	b, err := strconv.ParseInt(segs[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.ParseInt(segs[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return b, m, true
}

func malformed(err error) (*callback.Result, error) {
	if errors.Is(err, callback.ErrMalformedBody) {
		return callback.BadRequest(), nil
	}
	return nil, err
}
