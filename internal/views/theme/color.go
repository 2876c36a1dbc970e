package theme

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultColor fills ramp tones that have no source at all.
const DefaultColor = "#000000"

var (
	hslFunc    = regexp.MustCompile(`(?i)^hsla?\(\s*(.*?)\s*\)$`)
	hslTriplet = regexp.MustCompile(`^(-?[0-9.]+)(?:deg)?\s+(-?[0-9.]+)%\s+(-?[0-9.]+)%$`)
)

// NormalizeColor rewrites hsl()/hsla() expressions to the bare "H S% L%"
// triplet consumed by hsl(var(--token)) in stylesheets. Alpha is dropped.
// Any other value (hex, named colors, bare triplets) is returned trimmed but
// otherwise unchanged, so NormalizeColor is idempotent.
func NormalizeColor(value string) string {
	value = strings.TrimSpace(value)
	match := hslFunc.FindStringSubmatch(value)
	if match == nil {
		return value
	}

	inner := match[1]
	if slash := strings.Index(inner, "/"); slash >= 0 {
		inner = inner[:slash]
	}
	parts := strings.Fields(strings.ReplaceAll(inner, ",", " "))
	if len(parts) < 3 {
		return value
	}

	hue := strings.TrimSuffix(strings.ToLower(parts[0]), "deg")
	return hue + " " + percent(parts[1]) + " " + percent(parts[2])
}

func percent(part string) string {
	if strings.HasSuffix(part, "%") {
		return part
	}
	return part + "%"
}

// CSSColor converts a normalized token value into something a browser accepts
// outside a stylesheet (meta theme-color, manifest colors). Bare HSL triplets
// become hex; every other value is returned as-is.
func CSSColor(value string) string {
	value = NormalizeColor(value)
	match := hslTriplet.FindStringSubmatch(value)
	if match == nil {
		return value
	}
	h, errH := strconv.ParseFloat(match[1], 64)
	s, errS := strconv.ParseFloat(match[2], 64)
	l, errL := strconv.ParseFloat(match[3], 64)
	if errH != nil || errS != nil || errL != nil {
		return value
	}
	if math.IsInf(h, 0) || math.IsNaN(h) || math.Abs(h) > maxHue {
		return value
	}
	return colorful.Hsl(wrapHue(h), clampUnit(s/100), clampUnit(l/100)).Clamped().Hex()
}

// maxHue is the largest hue angle, in either direction, that CSSColor converts.
const maxHue = 1e6

func wrapHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
