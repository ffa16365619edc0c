package gui

import (
	"fmt"
	"os"
)

// Session is the already-validated session handed in by the transport
// layer. A nil *Session means the request is anonymous.
type Session struct {
	ID     string
	UserID string
}

// DefaultLoginPath is the redirect target when a tenant ships no auth pack.
const DefaultLoginPath = "/login"

// RouteDecision is what the HTTP layer acts on. "Not found" does not
// exist: route resolution is total for a tenant with a layout.
type RouteDecision interface {
	routeDecision()
}

// Serve carries the document to send, the fragment targets to inject and
// the session the page was resolved under.
type Serve struct {
	HTML      string
	Fragments []FragmentTarget
	Session   *Session
}

// Redirect sends the client to another path, typically the login page.
type Redirect struct {
	Target string
}

func (Serve) routeDecision()    {}
func (Redirect) routeDecision() {}

// DecideRoute resolves path against cfg and turns the result into a
// transport-consumable decision: a redirect to the login route when
// authentication is required and no session is present, otherwise the
// route's document plus its fragment targets.
func DecideRoute(cfg *TenantGuiConfig, path string, session *Session) (RouteDecision, error) {
	resolved := cfg.ResolveRoute(path)

	if resolved.Authenticated && session == nil {
		return Redirect{Target: loginPath(cfg.Auth)}, nil
	}

	html, err := os.ReadFile(resolved.HTMLPath)
	if err != nil {
		return nil, fmt.Errorf("gui: reading document %s: %w", resolved.HTMLPath, err)
	}
	return Serve{
		HTML:      string(html),
		Fragments: resolved.Fragments,
		Session:   session,
	}, nil
}

// loginPath is the auth pack's first declared route, or DefaultLoginPath
// when the tenant has no auth pack.
func loginPath(auth *AuthPack) string {
	if auth != nil && len(auth.Manifest.Routes) > 0 {
		return auth.Manifest.Routes[0].Path
	}
	return DefaultLoginPath
}
