package layout

import (
	"strings"

	"github.com/a-h/templ"

	"vitrine/internal/views/meta"
	"vitrine/models"
)

// TokenStyleID identifies the inline <style> holding the design tokens.
const TokenStyleID = "tenant-tokens"

// Page is everything the document shell needs.
type Page struct {
	Head     *meta.Head
	TokenCSS string
	Scheme   SchemeDefinition
}

// tokenStyle wraps generated token CSS, whose values are validated before
// they reach the stylesheet.
func tokenStyle(css string) string {
	return `<style id="` + TokenStyleID + `">` + "\n" + css + "</style>"
}

// safeURL keeps inline images and sanitizes everything else.
func safeURL(raw string) templ.SafeURL {
	if strings.HasPrefix(raw, "data:image/") {
		return templ.SafeURL(raw)
	}
	return templ.URL(raw)
}

func telURL(phone string) templ.SafeURL {
	return templ.URL("tel:" + strings.ReplaceAll(phone, " ", ""))
}

func hasContact(profile *models.Business) bool {
	return profile.Address != nil || profile.Phone != nil
}
