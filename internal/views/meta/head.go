// Package meta keeps a storefront's <head> in step with its tenant: title,
// icon links, social and PWA meta tags, and the web app manifest.
package meta

import "strings"

// Link is a <link> element.
type Link struct {
	Rel   string
	Href  string
	Sizes string
	Type  string
}

// Meta is a <meta> element keyed either by name= or by property=.
type Meta struct {
	Name     string
	Property string
	Content  string
}

// Key returns whichever attribute identifies the tag.
func (m Meta) Key() string {
	if m.Property != "" {
		return m.Property
	}
	return m.Name
}

// Head is the document model of a page's <head>. It is not safe for
// concurrent use; each render owns its own Head.
type Head struct {
	Title string
	Links []Link
	Metas []Meta
}

// NewHead returns an empty head.
func NewHead() *Head {
	return &Head{}
}

// AddLink appends a link element.
func (h *Head) AddLink(l Link) {
	h.Links = append(h.Links, l)
}

// RemoveLinks drops every link whose rel is one of rels and reports how many
// were removed.
func (h *Head) RemoveLinks(rels ...string) int {
	drop := make(map[string]bool, len(rels))
	for _, rel := range rels {
		drop[strings.ToLower(rel)] = true
	}
	kept := h.Links[:0]
	removed := 0
	for _, l := range h.Links {
		if drop[strings.ToLower(l.Rel)] {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	h.Links = kept
	return removed
}

// LinksByRel returns the links with the given rel in document order.
func (h *Head) LinksByRel(rel string) []Link {
	var out []Link
	for _, l := range h.Links {
		if strings.EqualFold(l.Rel, rel) {
			out = append(out, l)
		}
	}
	return out
}

// UpsertMeta updates the first tag keyed by key under either property= or
// name=, or appends a new one. New Open Graph tags use property=, all others
// name=.
func (h *Head) UpsertMeta(key, content string) {
	for i := range h.Metas {
		if h.Metas[i].Property == key || h.Metas[i].Name == key {
			h.Metas[i].Content = content
			return
		}
	}
	m := Meta{Content: content}
	if strings.HasPrefix(key, "og:") {
		m.Property = key
	} else {
		m.Name = key
	}
	h.Metas = append(h.Metas, m)
}

// Meta returns the content of the tag keyed by key.
func (h *Head) Meta(key string) (string, bool) {
	for _, m := range h.Metas {
		if m.Property == key || m.Name == key {
			return m.Content, true
		}
	}
	return "", false
}
