package theme

import (
	"sort"
	"strconv"
)

// Tones lists the canonical ramp steps, lightest first.
var Tones = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900", "950"}

// aliasPalettes get a single --color-{name} handle next to their full ramp.
var aliasPalettes = map[string]bool{
	"primary":   true,
	"secondary": true,
	"accent":    true,
}

type anchor struct {
	tone  int
	color string
}

// SynthesizeRamp expands a partial palette to all canonical tones. Missing
// tones copy the color of the nearest present tone; on equal distance the
// lower tone wins. An empty palette yields DefaultColor everywhere. The input
// is not modified.
func SynthesizeRamp(partial Palette) Palette {
	anchors := make([]anchor, 0, len(partial))
	for key, color := range partial {
		if color == "" {
			continue
		}
		tone, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		anchors = append(anchors, anchor{tone: tone, color: color})
	}
	sort.Slice(anchors, func(i, j int) bool {
		return anchors[i].tone < anchors[j].tone
	})

	ramp := make(Palette, len(Tones))
	for _, key := range Tones {
		if color := partial[key]; color != "" {
			ramp[key] = color
			continue
		}
		ramp[key] = nearest(anchors, mustTone(key))
	}
	return ramp
}

func nearest(anchors []anchor, tone int) string {
	if len(anchors) == 0 {
		return DefaultColor
	}
	best := anchors[0]
	bestDistance := distance(best.tone, tone)
	for _, a := range anchors[1:] {
		// strictly closer only: anchors are sorted, so ties keep the lower tone
		if d := distance(a.tone, tone); d < bestDistance {
			best, bestDistance = a, d
		}
	}
	return best.color
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func mustTone(key string) int {
	tone, err := strconv.Atoi(key)
	if err != nil {
		panic("theme: non-numeric canonical tone " + key)
	}
	return tone
}

// PaletteAlias picks the single semantic color of a ramp: 500, then 600,
// then DefaultColor.
func PaletteAlias(ramp Palette) string {
	if color := ramp["500"]; color != "" {
		return color
	}
	if color := ramp["600"]; color != "" {
		return color
	}
	return DefaultColor
}

// HasAlias reports whether the named palette is projected with a semantic alias.
func HasAlias(name string) bool {
	return aliasPalettes[name]
}
