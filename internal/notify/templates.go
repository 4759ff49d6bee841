package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplates []byte

// Audience is who a rendered text is addressed to.
type Audience string

const (
	CustomerSMS     Audience = "sms_customer"
	AdminTelegram   Audience = "telegram_admin"
	TelegramChannel Audience = "telegram_channel"
)

// Templates renders event texts per audience.
type Templates struct {
	byEvent map[string]map[Audience]*template.Template
}

// LoadTemplates parses the embedded catalog.
func LoadTemplates() (*Templates, error) {
	return ParseTemplates(defaultTemplates)
}

// ParseTemplates parses a YAML catalog of event -> audience -> template.
func ParseTemplates(data []byte) (*Templates, error) {
	var raw map[string]map[Audience]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	t := &Templates{byEvent: make(map[string]map[Audience]*template.Template, len(raw))}
	for event, audiences := range raw {
		t.byEvent[event] = make(map[Audience]*template.Template, len(audiences))
		for audience, text := range audiences {
			tmpl, err := template.New(event + "." + string(audience)).Option("missingkey=error").Parse(text)
			if err != nil {
				return nil, fmt.Errorf("failed to parse template %s.%s: %w", event, audience, err)
			}
			t.byEvent[event][audience] = tmpl
		}
	}

	return t, nil
}

// Render returns the text for an audience, or "" when the event has no
// template for it.
func (t *Templates) Render(event Event, audience Audience) (string, error) {
	tmpl, ok := t.byEvent[event.Type][audience]
	if !ok {
		return "", nil
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, event); err != nil {
		return "", fmt.Errorf("failed to render %s.%s: %w", event.Type, audience, err)
	}
	return buf.String(), nil
}
