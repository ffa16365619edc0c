package gui

import (
	"path/filepath"
	"regexp"
	"strings"
)

var slashRuns = regexp.MustCompile(`/+`)

// NormalizePath collapses repeated slashes and forces exactly one leading
// slash. The result is stable under repeated normalization.
func NormalizePath(path string) string {
	normalized := strings.TrimSpace(slashRuns.ReplaceAllString(path, "/"))
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return normalized
}

// pathMatches reports whether a normalized path matches a route pattern.
// A pattern ending in "/*" matches its prefix exactly and anything nested
// below it: "/docs/*" matches /docs, /docs/ and /docs/api, but not
// /documentation.
func pathMatches(path, pattern string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := NormalizePath(strings.TrimSuffix(pattern, "/*"))
		if path == prefix || prefix == "/" {
			return true
		}
		return strings.HasPrefix(path, prefix+"/")
	}
	return NormalizePath(pattern) == path
}

// RouteOrigin names the pack layer a route was resolved from.
type RouteOrigin string

const (
	RouteOriginLayout  RouteOrigin = "layout"
	RouteOriginAuth    RouteOrigin = "auth"
	RouteOriginFeature RouteOrigin = "feature"
)

// FragmentTarget pairs a fragment binding with the assets root of the pack
// that declared it. Fragments never share an implicit root.
type FragmentTarget struct {
	Binding    FragmentBinding
	AssetsRoot string
}

// ResolvedRoute is the outcome of matching a path against a tenant view.
type ResolvedRoute struct {
	Origin        RouteOrigin
	HTMLPath      string
	Authenticated bool
	Fragments     []FragmentTarget
}

// ResolveRoute matches path against feature routes in pack order, then
// auth routes, then falls back unconditionally to the layout entrypoint.
// Resolution is total: a tenant with a valid layout yields a route for
// every path; a page truly missing is the SPA layout's concern.
func (c *TenantGuiConfig) ResolveRoute(path string) ResolvedRoute {
	path = NormalizePath(path)

	for _, feature := range c.Features {
		assets := feature.Location().Assets
		for _, route := range feature.Manifest.Routes {
			if !pathMatches(path, route.Path) {
				continue
			}
			var fragments []FragmentTarget
			for _, binding := range feature.Manifest.Fragments {
				fragments = append(fragments, FragmentTarget{
					Binding:    binding,
					AssetsRoot: assets,
				})
			}
			return ResolvedRoute{
				Origin:        RouteOriginFeature,
				HTMLPath:      filepath.Join(assets, route.HTML),
				Authenticated: route.Authenticated,
				Fragments:     fragments,
			}
		}
	}

	if c.Auth != nil {
		assets := c.Auth.Location().Assets
		for _, route := range c.Auth.Manifest.Routes {
			if pathMatches(path, route.Path) {
				return ResolvedRoute{
					Origin:        RouteOriginAuth,
					HTMLPath:      filepath.Join(assets, route.HTML),
					Authenticated: !route.Public,
				}
			}
		}
	}

	return ResolvedRoute{
		Origin:   RouteOriginLayout,
		HTMLPath: filepath.Join(c.Layout.Location().Assets, c.Layout.Manifest.Layout.EntrypointHTML),
	}
}

// WorkersForRoute returns the digital workers attached to path, in pack
// order, using the same matcher as route resolution.
func (c *TenantGuiConfig) WorkersForRoute(path string) []DigitalWorker {
	path = NormalizePath(path)
	var workers []DigitalWorker
	for _, feature := range c.Features {
		for _, worker := range feature.Manifest.DigitalWorkers {
			for _, pattern := range worker.Routes {
				if pathMatches(path, pattern) {
					workers = append(workers, worker)
					break
				}
			}
		}
	}
	return workers
}
