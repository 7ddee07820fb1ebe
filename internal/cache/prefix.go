package cache

import "fmt"

type Prefix string

const (
	// TemplateSIDs maps Twilio template friendly names to ContentSids.
	TemplateSIDs Prefix = "template_sid"
)

func (p Prefix) Key(id string) string {
	return fmt.Sprintf("%s:%s", p, id)
}
