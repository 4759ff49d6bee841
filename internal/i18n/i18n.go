// Package i18n localizes client-facing error messages.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var defaultMessages []byte

// Supported languages; the first one is the fallback.
var supported = []language.Tag{language.Russian, language.English}

// Catalog holds messages per error code and language.
type Catalog struct {
	messages map[string]map[string]string
	matcher  language.Matcher
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(defaultMessages)
}

// Parse reads a YAML catalog of code -> language -> text.
func Parse(data []byte) (*Catalog, error) {
	var messages map[string]map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse message catalog: %w", err)
	}

	for code, texts := range messages {
		if _, ok := texts[base(supported[0])]; !ok {
			return nil, fmt.Errorf("message %s has no %s text", code, base(supported[0]))
		}
	}

	return &Catalog{
		messages: messages,
		matcher:  language.NewMatcher(supported),
	}, nil
}

// Negotiate picks the best supported language for an Accept-Language header.
func (c *Catalog) Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, index, confidence := c.matcher.Match(tags...)
	if confidence == language.No {
		return supported[0]
	}
	return supported[index]
}

// Message returns the text for code in lang with {param} placeholders
// filled. ok is false when the code is unknown.
func (c *Catalog) Message(lang language.Tag, code string, params map[string]string) (string, bool) {
	texts, ok := c.messages[code]
	if !ok {
		return "", false
	}

	text, ok := texts[base(lang)]
	if !ok {
		text = texts[base(supported[0])]
	}

	if len(params) > 0 {
		pairs := make([]string, 0, len(params)*2)
		for k, v := range params {
			pairs = append(pairs, "{"+k+"}", v)
		}
		text = strings.NewReplacer(pairs...).Replace(text)
	}

	return text, true
}

func base(tag language.Tag) string {
	b, _ := tag.Base()
	return b.String()
}
