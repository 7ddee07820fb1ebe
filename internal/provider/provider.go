// Package provider defines the contract WhatsApp provider adapters implement
// and the dispatch and result classification they share.
package provider

import (
	"context"
	"errors"

	"github.com/oggyb/whatsapp-relay/internal/domain/message"
)

// Provider sends single messages through one WhatsApp provider account.
// Implementations never return errors: every failure is encoded in the
// SendResult.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// SendText handles a message that carries no template directive.
	// Providers without free-form support reject it.
	SendText(ctx context.Context, msg message.Outbound, statusCallback string) message.SendResult

	// SendTemplate sends a parsed template directive.
	SendTemplate(ctx context.Context, msg message.Outbound, tpl *message.Template, statusCallback string) message.SendResult
}

// Send picks the send strategy from the shape of msg.Message and invokes p.
// A JSON object with a non-empty "template" field goes to the template
// strategy; everything else goes to the provider's free-form default.
func Send(ctx context.Context, p Provider, msg message.Outbound, callbackBase string) message.SendResult {
	statusCallback := msg.CallbackURL(callbackBase)

	if !message.HasTemplate(msg.Message) {
		return p.SendText(ctx, msg, statusCallback)
	}

	tpl, err := message.ParseTemplate(msg.Message)
	if err != nil {
		if errors.Is(err, message.ErrTemplateIDMissing) {
			return message.Failed(msg, false, err.Error())
		}
		return message.Failed(msg, false, message.ErrMalformedTemplate.Error())
	}
	return p.SendTemplate(ctx, msg, tpl, statusCallback)
}
