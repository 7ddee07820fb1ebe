package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_BodyString(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"quoted form body", `{"body":"From=a&Body=b"}`, "From=a&Body=b"},
		{"quoted json body", `{"body":"{\"StatusId\":1}"}`, `{"StatusId":1}`},
		{"inline object", `{"body":{"StatusId":1}}`, `{"StatusId":1}`},
		{"inline array", `{"body":[1,2]}`, `[1,2]`},
		{"null", `{"body":null}`, ""},
		{"missing", `{}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ParseRequest
			require.NoError(t, json.Unmarshal([]byte(tt.json), &p))
			assert.Equal(t, tt.want, p.BodyString())
		})
	}
}

func TestParseRequest_Callback(t *testing.T) {
	p := ParseRequest{URI: "https://relay/cb/1/2", Body: json.RawMessage(`"MessageStatus=sent"`)}
	req := p.Callback()
	assert.Equal(t, "https://relay/cb/1/2", req.URI)
	assert.Equal(t, "MessageStatus=sent", req.Body)
}
