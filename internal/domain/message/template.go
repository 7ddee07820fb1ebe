package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedTemplate is returned when a message that was routed to the
	// template strategy does not decode as a template directive.
	ErrMalformedTemplate = errors.New("invalid JSON for template payload")
	// ErrTemplateIDMissing is returned when the directive carries no usable
	// template identifier.
	ErrTemplateIDMissing = errors.New("template identifier missing")
)

// Template is the "template" object of a template directive:
//
//	{"template": {"templateId": "...", "name": "...", "components": [...], "recipientData": {...}}}
type Template struct {
	TemplateID    string         `json:"templateId,omitempty"`
	Name          string         `json:"name,omitempty"`
	Components    []Component    `json:"components,omitempty"`
	RecipientData map[string]any `json:"recipientData,omitempty"`
}

// Component is one template component; only "body" components contribute
// substitution parameters.
type Component struct {
	Type       string      `json:"type"`
	Parameters []Parameter `json:"parameters,omitempty"`
}

// Parameter is one substitution value. Only "text" parameters are used.
type Parameter struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ValueType string `json:"valueType,omitempty"`
}

// BodyParameter is a text parameter of a body component together with its
// 1-based position inside that component's parameter list.
type BodyParameter struct {
	Index     int
	Text      string
	ValueType string
}

// HasTemplate reports whether raw is a JSON object with a non-empty
// "template" field. Anything else (plain text, other JSON values, objects
// without the field) is not a template directive.
func HasTemplate(raw string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return false
	}
	v, ok := obj["template"]
	if !ok {
		return false
	}
	switch string(bytes.TrimSpace(v)) {
	case "", "null", "false", `""`, "0":
		return false
	}
	return true
}

// ParseTemplate decodes the template directive carried by raw.
func ParseTemplate(raw string) (*Template, error) {
	var d struct {
		Template json.RawMessage `json:"template"`
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, ErrMalformedTemplate
	}

	body := bytes.TrimSpace(d.Template)
	if len(body) == 0 || body[0] != '{' {
		return nil, ErrTemplateIDMissing
	}

	var t Template
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	t.TemplateID = strings.TrimSpace(t.TemplateID)
	t.Name = strings.TrimSpace(t.Name)
	return &t, nil
}

// BodyParameters returns the text parameters of every body component in
// array order. Parameters of other types keep their slot in the numbering.
func (t *Template) BodyParameters() []BodyParameter {
	var out []BodyParameter
	for _, comp := range t.Components {
		if comp.Type != "body" {
			continue
		}
		for i, p := range comp.Parameters {
			if p.Type != "text" {
				continue
			}
			out = append(out, BodyParameter{
				Index:     i + 1,
				Text:      p.Text,
				ValueType: p.ValueType,
			})
		}
	}
	return out
}

// RecipientString returns recipientData[key] when it is a string.
func (t *Template) RecipientString(key string) string {
	if v, ok := t.RecipientData[key].(string); ok {
		return v
	}
	return ""
}
