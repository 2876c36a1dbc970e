package theme

import (
	"strings"
	"sync"
)

const (
	// DarkStyleID identifies the injected block holding dark-mode overrides.
	DarkStyleID = "tenant-dark-mode"
	// DarkSelector scopes the dark-mode overrides.
	DarkSelector = ".dark"
)

// Store projects theme configs onto a Scope. Writes are last-write-wins;
// categories absent from a config keep whatever an earlier Apply wrote.
type Store struct {
	mu    sync.Mutex
	scope Scope
	owned map[string]struct{}
}

// NewStore binds a Store to its target scope.
func NewStore(scope Scope) *Store {
	return &Store{scope: scope, owned: make(map[string]struct{})}
}

// Apply writes every token of cfg. A nil config is a no-op.
func (s *Store) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Colors != nil {
		for _, token := range sortedKeys(cfg.Colors.Light) {
			s.set(ColorVar(token), NormalizeColor(cfg.Colors.Light[token]))
		}
	}
	s.applyDark(cfg.Colors)

	palettes := cfg.Palettes()
	for _, name := range sortedKeys(palettes) {
		ramp := SynthesizeRamp(normalizePalette(palettes[name]))
		for _, tone := range Tones {
			s.set(ColorVar(name+"-"+tone), ramp[tone])
		}
		if HasAlias(name) {
			s.set(ColorVar(name), PaletteAlias(ramp))
		}
	}

	if cfg.Typography != nil {
		s.setAll("--font-", cfg.Typography.FontFamily)
	}
	s.setAll("--spacing-", cfg.Spacing)
	s.setAll("--radius-", cfg.BorderRadius)
	s.setAll("--shadow-", cfg.Shadows)
	if cfg.Buttons != nil {
		s.setAll("--button-variant-", cfg.Buttons.Variants)
		s.setAll("--button-size-", cfg.Buttons.Sizes)
	}
}

// Reset removes every property this store has written and the dark block.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.owned {
		s.scope.RemoveProperty(name)
	}
	s.owned = make(map[string]struct{})
	s.scope.RemoveStyleBlock(DarkStyleID)
}

func (s *Store) applyDark(colors *Colors) {
	var dark map[string]string
	if colors != nil {
		dark = colors.Dark
	}
	if len(dark) == 0 {
		s.scope.RemoveStyleBlock(DarkStyleID)
		return
	}

	var rules strings.Builder
	rules.WriteString(DarkSelector)
	rules.WriteString(" {\n")
	for _, token := range sortedKeys(dark) {
		name := ColorVar(token)
		s.set(name+"-dark", NormalizeColor(dark[token]))
		rules.WriteString("  ")
		rules.WriteString(name)
		rules.WriteString(": var(")
		rules.WriteString(name)
		rules.WriteString("-dark);\n")
	}
	rules.WriteString("}\n")
	s.scope.SetStyleBlock(DarkStyleID, rules.String())
}

func (s *Store) setAll(prefix string, values map[string]string) {
	for _, key := range sortedKeys(values) {
		s.set(prefix+key, values[key])
	}
}

func (s *Store) set(name, value string) {
	s.scope.SetProperty(name, value)
	s.owned[name] = struct{}{}
}

func normalizePalette(p Palette) Palette {
	out := make(Palette, len(p))
	for tone, color := range p {
		out[tone] = NormalizeColor(color)
	}
	return out
}

// ColorVar names the custom property of a color token.
func ColorVar(token string) string {
	return "--color-" + token
}
