package gui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePack(t *testing.T, root, tenant, dir, manifest string) string {
	t.Helper()
	packRoot := filepath.Join(root, tenant, dir)
	if err := os.MkdirAll(filepath.Join(packRoot, "gui"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(packRoot, "gui", "manifest.json"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return packRoot
}

const layoutManifestJSON = `{
	"kind": "gui-layout",
	"layout": {
		"slots": ["content", "sidebar"],
		"entrypoint_html": "index.html",
		"spa": true,
		"slot_selectors": {"content": "main#content"}
	}
}`

func TestFSProviderLoadLayout(t *testing.T) {
	root := t.TempDir()
	packRoot := writePack(t, root, "acme", "base-layout", layoutManifestJSON)
	provider := NewFSProvider(root)

	layout, err := provider.LoadLayout("acme")
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if layout.Manifest.Layout.EntrypointHTML != "index.html" {
		t.Errorf("entrypoint = %q", layout.Manifest.Layout.EntrypointHTML)
	}
	if !layout.Manifest.Layout.SPA {
		t.Error("spa flag lost")
	}
	if got := layout.Location().Assets; got != filepath.Join(packRoot, "gui", "assets") {
		t.Errorf("assets = %q", got)
	}
	if got := layout.Manifest.Layout.SelectorForSlot("content"); got != "main#content" {
		t.Errorf("content selector = %q", got)
	}
	if got := layout.Manifest.Layout.SelectorForSlot("sidebar"); got != "#sidebar" {
		t.Errorf("sidebar selector = %q, want id default", got)
	}
}

func TestFSProviderMissingLayout(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "acme", "auth", `{"kind": "gui-auth", "routes": []}`)
	provider := NewFSProvider(root)

	_, err := provider.LoadLayout("acme")
	if !errors.Is(err, ErrNoLayout) {
		t.Errorf("err = %v, want ErrNoLayout", err)
	}
	_, err = provider.LoadLayout("unknown-tenant")
	if !errors.Is(err, ErrNoLayout) {
		t.Errorf("unknown tenant err = %v, want ErrNoLayout", err)
	}
}

func TestFSProviderOptionalPacksAbsent(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "acme", "base-layout", layoutManifestJSON)
	provider := NewFSProvider(root)

	auth, err := provider.LoadAuth("acme")
	if err != nil || auth != nil {
		t.Errorf("LoadAuth = %v, %v; want nil, nil", auth, err)
	}
	skin, err := provider.LoadSkin("acme")
	if err != nil || skin != nil {
		t.Errorf("LoadSkin = %v, %v; want nil, nil", skin, err)
	}
	tel, err := provider.LoadTelemetry("acme")
	if err != nil || tel != nil {
		t.Errorf("LoadTelemetry = %v, %v; want nil, nil", tel, err)
	}
	features, err := provider.LoadFeatures("acme")
	if err != nil || len(features) != 0 {
		t.Errorf("LoadFeatures = %v, %v; want empty", features, err)
	}
}

func TestFSProviderFeatureOrder(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "acme", "20-billing", `{"kind": "gui-feature", "routes": [{"path": "/billing"}]}`)
	writePack(t, root, "acme", "10-invoices", `{"kind": "gui-feature", "routes": [{"path": "/invoices"}]}`)
	writePack(t, root, "acme", "15-layout", layoutManifestJSON)
	provider := NewFSProvider(root)

	features, err := provider.LoadFeatures("acme")
	if err != nil {
		t.Fatalf("LoadFeatures: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("len(features) = %d, want 2", len(features))
	}
	if features[0].Manifest.Routes[0].Path != "/invoices" {
		t.Errorf("features[0] route = %q, want lexical dir order", features[0].Manifest.Routes[0].Path)
	}
	if features[1].Manifest.Routes[0].Path != "/billing" {
		t.Errorf("features[1] route = %q", features[1].Manifest.Routes[0].Path)
	}
}

func TestFSProviderSkinDataPassthrough(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "acme", "skin", `{"kind": "gui-skin", "theme": {"primary": "#336699"}}`)
	provider := NewFSProvider(root)

	skin, err := provider.LoadSkin("acme")
	if err != nil || skin == nil {
		t.Fatalf("LoadSkin: %v, %v", skin, err)
	}
	if got := skin.Data.Get("theme.primary").String(); got != "#336699" {
		t.Errorf("theme.primary = %q", got)
	}
}

func TestFSProviderInvalidManifest(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "acme", "broken", `{"kind": "gui-layout",`)
	provider := NewFSProvider(root)

	if _, err := provider.LoadLayout("acme"); err == nil {
		t.Error("invalid manifest should fail the load, not be skipped")
	}
}

func TestFSProviderAuthManifest(t *testing.T) {
	root := t.TempDir()
	writePack(t, root, "acme", "auth", `{
		"kind": "gui-auth",
		"routes": [
			{"path": "/login", "public": true, "html": "login.html"},
			{"path": "/account", "html": "account.html"}
		]
	}`)
	provider := NewFSProvider(root)

	auth, err := provider.LoadAuth("acme")
	if err != nil || auth == nil {
		t.Fatalf("LoadAuth: %v, %v", auth, err)
	}
	if len(auth.Manifest.Routes) != 2 {
		t.Fatalf("len(routes) = %d", len(auth.Manifest.Routes))
	}
	if !auth.Manifest.Routes[0].Public || auth.Manifest.Routes[1].Public {
		t.Errorf("public flags = %v, %v", auth.Manifest.Routes[0].Public, auth.Manifest.Routes[1].Public)
	}
}
