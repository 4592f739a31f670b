// Package i18n resolves user-facing message keys to display strings. The
// core never hardcodes language-specific text; every notification and place
// label goes through a Provider.
package i18n

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLocale is used when the requested locale has no bundle.
const DefaultLocale = "pt-br"

// Provider resolves dotted message keys ("errors.searchFailed") for a locale.
type Provider struct {
	bundles map[string]map[string]string
	locale  string
}

// New loads every embedded locale bundle. It fails only on a malformed
// bundle, which is a build defect rather than a runtime condition.
func New(locale string) (*Provider, error) {
	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}

	bundles := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".yaml")
		raw, err := localeFS.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, err
		}

		var tree map[string]interface{}
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}

		flat := make(map[string]string)
		flatten("", tree, flat)
		bundles[name] = flat
	}

	locale = normalizeLocale(locale)
	if _, ok := bundles[locale]; !ok {
		locale = DefaultLocale
	}

	return &Provider{bundles: bundles, locale: locale}, nil
}

// Locale returns the active locale.
func (p *Provider) Locale() string {
	return p.locale
}

// T resolves a dotted message key in the active locale, falling back to the
// default locale and finally to the key itself.
func (p *Provider) T(key string) string {
	if msg, ok := p.bundles[p.locale][key]; ok {
		return msg
	}
	if msg, ok := p.bundles[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// PlaceLabel resolves a localized label for an OSM tag pair ("amenity:cafe").
// Returns false when no label exists so the caller can apply its fallback
// formatting.
func (p *Provider) PlaceLabel(tagKey string) (string, bool) {
	if msg, ok := p.bundles[p.locale]["places."+tagKey]; ok {
		return msg, true
	}
	if msg, ok := p.bundles[DefaultLocale]["places."+tagKey]; ok {
		return msg, true
	}
	return "", false
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return DefaultLocale
	}
	if strings.HasPrefix(locale, "pt") {
		return "pt-br"
	}
	if strings.HasPrefix(locale, "en") {
		return "en"
	}
	return locale
}

func flatten(prefix string, tree map[string]interface{}, out map[string]string) {
	for key, value := range tree {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]interface{}:
			flatten(full, v, out)
		case string:
			out[full] = v
		default:
			out[full] = fmt.Sprintf("%v", v)
		}
	}
}
