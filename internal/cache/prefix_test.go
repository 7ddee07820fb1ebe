package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefix_Key(t *testing.T) {
	assert.Equal(t, "template_sid:order_update", TemplateSIDs.Key("order_update"))
	assert.Equal(t, "template_sid:", TemplateSIDs.Key(""))
}
