package meta

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	applog "vitrine/internal/log"
	"vitrine/internal/views/theme"
	"vitrine/models"
)

// IconSizes are the legacy iOS touch icon sizes, largest first.
var IconSizes = []int{180, 167, 152, 144, 120, 114, 76, 72, 60, 57}

// iconRels are the link relations owned by the synchronizer.
var iconRels = []string{"icon", "shortcut icon", "apple-touch-icon", "apple-touch-icon-precomposed"}

const (
	shortNameLimit       = 12
	defaultBackground    = "#ffffff"
	defaultManifestOwner = "default"
)

// Synchronizer writes tenant metadata into a Head.
type Synchronizer struct {
	logos     *LogoEncoder
	manifests *ManifestRegistry
}

// NewSynchronizer wires a synchronizer. A nil encoder skips re-encoding; a
// nil registry skips manifest installation.
func NewSynchronizer(logos *LogoEncoder, manifests *ManifestRegistry) *Synchronizer {
	return &Synchronizer{logos: logos, manifests: manifests}
}

// Manifests exposes the registry manifests are installed into.
func (s *Synchronizer) Manifests() *ManifestRegistry {
	return s.manifests
}

// Sync replaces the title, icon links, meta tags and manifest link of head
// with the values of profile and cfg. Every step is best effort.
func (s *Synchronizer) Sync(ctx context.Context, head *Head, profile *models.Business, cfg *theme.Config) {
	if head == nil || profile == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			applog.Error(ctx, "page meta sync aborted", "tenant", profile.ID, "panic", fmt.Sprint(r))
		}
	}()

	head.Title = Title(profile)
	color := theme.CSSColor(theme.PrimaryColor(cfg))

	icon := profile.LogoURL
	if s.logos != nil {
		icon = s.logos.Resolve(ctx, profile.LogoURL)
	}

	s.syncIcons(head, icon)
	s.syncMetas(head, profile, color, icon)
	s.syncManifest(ctx, head, profile, cfg, color, icon)
}

// Title is the document title of a tenant.
func Title(profile *models.Business) string {
	name := strings.TrimSpace(profile.Name)
	desc := strings.TrimSpace(profile.Description)
	if desc == "" {
		return name
	}
	return name + ": " + desc
}

func (s *Synchronizer) syncIcons(head *Head, icon string) {
	head.RemoveLinks(iconRels...)
	if icon == "" {
		return
	}
	kind := iconType(icon)
	head.AddLink(Link{Rel: "icon", Href: icon, Type: kind})
	head.AddLink(Link{Rel: "shortcut icon", Href: icon, Type: kind})
	for _, size := range IconSizes {
		head.AddLink(Link{Rel: "apple-touch-icon", Href: icon, Sizes: sizeAttr(size)})
	}
	head.AddLink(Link{Rel: "apple-touch-icon", Href: icon})
	head.AddLink(Link{Rel: "apple-touch-icon-precomposed", Href: icon})
}

func (s *Synchronizer) syncMetas(head *Head, profile *models.Business, color, icon string) {
	image := profile.LogoURL
	if image == "" {
		image = icon
	}
	for _, kv := range [][2]string{
		{"description", profile.Description},
		{"theme-color", color},
		{"msapplication-TileColor", color},
		{"msapplication-TileImage", icon},
		{"og:title", profile.Name},
		{"og:description", profile.Description},
		{"og:image", image},
		{"og:type", "website"},
		{"twitter:card", "summary"},
		{"twitter:image", image},
		{"twitter:title", profile.Name},
		{"twitter:description", profile.Description},
		{"apple-mobile-web-app-capable", "yes"},
		{"apple-mobile-web-app-status-bar-style", "default"},
		{"apple-mobile-web-app-title", profile.Name},
	} {
		head.UpsertMeta(kv[0], kv[1])
	}
}

func (s *Synchronizer) syncManifest(ctx context.Context, head *Head, profile *models.Business, cfg *theme.Config, color, icon string) {
	if s.manifests == nil {
		return
	}
	m := BuildManifest(profile, cfg, color, icon)
	installed, err := s.manifests.Install(ManifestOwner(profile), m)
	if err != nil {
		applog.Warn(ctx, "manifest installation failed", "tenant", profile.ID, "error", err)
		return
	}
	head.RemoveLinks("manifest")
	head.AddLink(Link{Rel: "manifest", Href: installed.Href()})
}

// ManifestOwner is the registry key of a tenant's manifest.
func ManifestOwner(profile *models.Business) string {
	if profile == nil || profile.ID == "" {
		return defaultManifestOwner
	}
	return profile.ID
}

// BuildManifest assembles the manifest document of a tenant.
func BuildManifest(profile *models.Business, cfg *theme.Config, color, icon string) Manifest {
	background := defaultBackground
	if cfg != nil && cfg.Colors != nil {
		if v := strings.TrimSpace(cfg.Colors.Light["background"]); v != "" {
			background = theme.CSSColor(theme.NormalizeColor(v))
		}
	}

	m := Manifest{
		Name:            profile.Name,
		ShortName:       shortName(profile.Name),
		Description:     profile.Description,
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: background,
		ThemeColor:      color,
	}
	if icon != "" {
		kind := iconType(icon)
		for _, size := range IconSizes {
			m.Icons = append(m.Icons, ManifestIcon{Src: icon, Sizes: sizeAttr(size), Type: kind})
		}
	}
	return m
}

func shortName(name string) string {
	runes := []rune(strings.TrimSpace(name))
	if len(runes) <= shortNameLimit {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:shortNameLimit]))
}

func sizeAttr(px int) string {
	return fmt.Sprintf("%dx%d", px, px)
}

// iconType guesses the media type of an icon source, data URIs included.
func iconType(src string) string {
	if rest, ok := strings.CutPrefix(src, "data:"); ok {
		mediaType, _, _ := strings.Cut(rest, ";")
		return mediaType
	}
	base := src
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	return mime.TypeByExtension(strings.ToLower(path.Ext(base)))
}
