package theme

// Default returns the built-in design tokens every storefront starts from. A
// fresh value is returned on each call so callers may mutate it.
func Default() *Config {
	return &Config{
		Colors: &Colors{
			Light: map[string]string{
				"background": "0 0% 100%",
				"foreground": "222 47% 11%",
				"muted":      "210 40% 96%",
				"border":     "214 32% 91%",
			},
			CustomPalette: map[string]Palette{
				"primary": {
					"50":  "214 100% 97%",
					"100": "214 95% 93%",
					"500": "217 91% 60%",
					"700": "224 76% 48%",
					"950": "226 57% 21%",
				},
				"secondary": {
					"100": "210 40% 96%",
					"500": "215 16% 47%",
					"900": "222 47% 11%",
				},
				"accent": {
					"100": "48 96% 89%",
					"500": "38 92% 50%",
					"900": "22 78% 26%",
				},
			},
		},
		Typography: &Typography{
			FontFamily: map[string]string{
				"sans":    `"Inter", ui-sans-serif, system-ui, sans-serif`,
				"heading": `"Inter", ui-sans-serif, system-ui, sans-serif`,
			},
		},
		Spacing: map[string]string{
			"xs": "0.25rem",
			"sm": "0.5rem",
			"md": "1rem",
			"lg": "1.5rem",
			"xl": "2rem",
		},
		BorderRadius: map[string]string{
			"sm":   "0.25rem",
			"md":   "0.5rem",
			"lg":   "0.75rem",
			"full": "9999px",
		},
		Shadows: map[string]string{
			"sm": "0 1px 2px 0 rgb(0 0 0 / 0.05)",
			"md": "0 4px 6px -1px rgb(0 0 0 / 0.1), 0 2px 4px -2px rgb(0 0 0 / 0.1)",
		},
		Buttons: &Buttons{
			Variants: map[string]string{
				"primary":   "bg-primary text-white hover:bg-primary-600",
				"secondary": "bg-secondary-100 text-secondary-900",
				"outline":   "border border-primary text-primary",
			},
			Sizes: map[string]string{
				"sm": "px-3 py-1.5 text-sm",
				"md": "px-4 py-2",
				"lg": "px-6 py-3 text-lg",
			},
		},
	}
}

// Project renders the built-in defaults overlaid with cfg into a new scope.
// A nil cfg leaves the defaults untouched.
func Project(cfg *Config) *MemoryScope {
	scope := NewMemoryScope()
	store := NewStore(scope)
	store.Apply(Default())
	store.Apply(cfg)
	return scope
}

// PrimaryColor resolves the single brand color of a config: the primary
// palette's 500 tone, then the light primary-500 token, then DefaultColor.
// The result is normalized.
func PrimaryColor(cfg *Config) string {
	if cfg != nil {
		if primary, ok := cfg.Palettes()["primary"]; ok && primary["500"] != "" {
			return NormalizeColor(primary["500"])
		}
		if cfg.Colors != nil && cfg.Colors.Light["primary-500"] != "" {
			return NormalizeColor(cfg.Colors.Light["primary-500"])
		}
	}
	return DefaultColor
}
