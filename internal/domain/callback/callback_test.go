package callback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTableLookup(t *testing.T) {
	table := StatusTable[string]{
		"sent":      StatusSent,
		"delivered": StatusDelivered,
	}

	assert.Equal(t, StatusSent, table.Lookup("sent"))
	assert.Equal(t, StatusDelivered, table.Lookup("delivered"))
	assert.Equal(t, StatusUnknown, table.Lookup("nope"))
	assert.Equal(t, StatusUnknown, table.Lookup(""))

	ints := StatusTable[int]{2: StatusDelivered}
	assert.Equal(t, StatusDelivered, ints.Lookup(2))
	assert.Equal(t, StatusUnknown, ints.Lookup(99))

	var empty StatusTable[int]
	assert.Equal(t, StatusUnknown, empty.Lookup(1))
}

func TestBadRequestCarriesOnlyMarker(t *testing.T) {
	raw, err := json.Marshal(BadRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"customHttpResponse":{"statusCode":400}}`, string(raw))
}
