package geocode

import "localist_backend/internal/osm"

// FormatAddress builds a display address from reverse-geocode properties.
// Parts are joined with " - "; the country is omitted when it is the obvious
// one. An empty string means nothing usable came back and the caller should
// substitute its "not identified" label.
func FormatAddress(props *osm.FeatureProperties) string {
	if props == nil {
		return ""
	}

	var parts []string

	switch {
	case props.Street != "" && props.Housenumber != "":
		parts = append(parts, props.Street+", "+props.Housenumber)
	case props.Street != "":
		parts = append(parts, props.Street)
	case props.Name != "":
		parts = append(parts, props.Name)
	}

	if props.District != "" {
		parts = append(parts, props.District)
	}
	if props.City != "" {
		parts = append(parts, props.City)
	}
	if props.State != "" {
		parts = append(parts, props.State)
	}
	if props.Country != "" && props.Country != "Brasil" && props.Country != "Brazil" {
		parts = append(parts, props.Country)
	}

	if len(parts) == 0 {
		return ""
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += " - " + p
	}
	return out
}
