package provider

import (
	"errors"
	"fmt"

	"github.com/oggyb/whatsapp-relay/internal/domain/message"
)

// ErrTransient and ErrPermanent classify failures that happen before a
// provider reply can be inspected.
var (
	ErrTransient = errors.New("transient error")
	ErrPermanent = errors.New("permanent error")
)

// WrapTransient annotates an error so callers can detect transient failures.
func WrapTransient(err error) error {
	if err == nil {
		return ErrTransient
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// WrapPermanent annotates an error as permanent.
func WrapPermanent(err error) error {
	if err == nil {
		return ErrPermanent
	}
	return fmt.Errorf("%w: %v", ErrPermanent, err)
}

// IsRetryable reports whether err was marked transient.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// FromError converts a classified error into a failed result.
func FromError(msg message.Outbound, err error) message.SendResult {
	return message.Failed(msg, IsRetryable(err), err.Error())
}
