package layout

import "sort"

// Color schemes a visitor can pick.
const (
	SchemeLight   = "light"
	SchemeDark    = "dark"
	DefaultScheme = SchemeLight
)

// SchemeDefinition describes a color scheme of the storefront shell.
type SchemeDefinition struct {
	ID          string
	Label       string
	Description string
	// HTMLClass is added to <html>; the dark class switches tokens to their
	// -dark variants.
	HTMLClass string
}

var schemeRegistry = map[string]SchemeDefinition{
	SchemeLight: {
		ID:          SchemeLight,
		Label:       "Light",
		Description: "The storefront's light palette.",
	},
	SchemeDark: {
		ID:          SchemeDark,
		Label:       "Dark",
		Description: "Dark tokens where the store defines them.",
		HTMLClass:   "dark",
	},
}

// SchemeByID returns a definition for the provided identifier, falling back to the default scheme.
func SchemeByID(id string) SchemeDefinition {
	if def, ok := schemeRegistry[id]; ok {
		return def
	}
	return schemeRegistry[DefaultScheme]
}

// ValidScheme reports whether id names a registered scheme.
func ValidScheme(id string) bool {
	_, ok := schemeRegistry[id]
	return ok
}

// SchemeOptions exposes all scheme definitions sorted by label for form rendering.
func SchemeOptions() []SchemeDefinition {
	options := make([]SchemeDefinition, 0, len(schemeRegistry))
	for _, def := range schemeRegistry {
		options = append(options, def)
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Label < options[j].Label
	})
	return options
}
