package gui

import (
	"encoding/json"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// PackKind identifies the role a pack plays in a tenant's GUI.
type PackKind string

const (
	PackKindLayout    PackKind = "gui-layout"
	PackKindAuth      PackKind = "gui-auth"
	PackKindFeature   PackKind = "gui-feature"
	PackKindSkin      PackKind = "gui-skin"
	PackKindTelemetry PackKind = "gui-telemetry"
)

// PackLocation roots a pack on disk. Assets always live under
// <root>/gui/assets; each pack carries its own assets root so a feature can
// ship fragment modules independently of the layout's assets.
type PackLocation struct {
	Root   string `json:"root"`
	Assets string `json:"assets"`
}

func locationFor(root string) PackLocation {
	return PackLocation{
		Root:   root,
		Assets: filepath.Join(root, "gui", "assets"),
	}
}

// GuiPack is the closed set of pack variants a provider can load. The five
// implementations below are the only ones; call sites switch over them
// exhaustively.
type GuiPack interface {
	Kind() PackKind
	Location() PackLocation

	guiPack()
}

// LayoutPack is the single mandatory pack of a tenant.
type LayoutPack struct {
	Manifest LayoutManifest
	PackRoot string
}

// AuthPack contributes login-adjacent routes.
type AuthPack struct {
	Manifest AuthManifest
	PackRoot string
}

// FeaturePack contributes routes, fragment bindings and digital workers.
type FeaturePack struct {
	Manifest FeatureManifest
	PackRoot string
}

// SkinPack carries opaque styling data consumed by the client.
type SkinPack struct {
	Data     gjson.Result
	PackRoot string
}

// TelemetryPack carries opaque telemetry wiring consumed by collaborators.
type TelemetryPack struct {
	Data     gjson.Result
	PackRoot string
}

func (p LayoutPack) Kind() PackKind    { return PackKindLayout }
func (p AuthPack) Kind() PackKind      { return PackKindAuth }
func (p FeaturePack) Kind() PackKind   { return PackKindFeature }
func (p SkinPack) Kind() PackKind      { return PackKindSkin }
func (p TelemetryPack) Kind() PackKind { return PackKindTelemetry }

func (p LayoutPack) Location() PackLocation    { return locationFor(p.PackRoot) }
func (p AuthPack) Location() PackLocation      { return locationFor(p.PackRoot) }
func (p FeaturePack) Location() PackLocation   { return locationFor(p.PackRoot) }
func (p SkinPack) Location() PackLocation      { return locationFor(p.PackRoot) }
func (p TelemetryPack) Location() PackLocation { return locationFor(p.PackRoot) }

func (LayoutPack) guiPack()    {}
func (AuthPack) guiPack()      {}
func (FeaturePack) guiPack()   {}
func (SkinPack) guiPack()      {}
func (TelemetryPack) guiPack() {}

// LayoutManifest describes the host document and its slot structure.
type LayoutManifest struct {
	Kind   string       `json:"kind"`
	Layout LayoutConfig `json:"layout"`
}

type LayoutConfig struct {
	Slots          []string          `json:"slots"`
	EntrypointHTML string            `json:"entrypoint_html"`
	SPA            bool              `json:"spa"`
	SlotSelectors  map[string]string `json:"slot_selectors"`
}

// SelectorForSlot returns the CSS selector a slot renders into, defaulting
// to an id selector named after the slot.
func (c LayoutConfig) SelectorForSlot(slot string) string {
	if sel, ok := c.SlotSelectors[slot]; ok && sel != "" {
		return sel
	}
	return "#" + slot
}

// AuthManifest declares login-adjacent routes plus opaque OAuth and UI
// binding payloads interpreted by external collaborators.
type AuthManifest struct {
	Kind       string          `json:"kind"`
	Routes     []AuthRoute     `json:"routes"`
	OAuth      json.RawMessage `json:"oauth"`
	UIBindings json.RawMessage `json:"ui_bindings"`
}

type AuthRoute struct {
	Path   string `json:"path"`
	Public bool   `json:"public"`
	HTML   string `json:"html"`
}

// FeatureManifest declares routes, digital workers and fragment bindings.
type FeatureManifest struct {
	Kind           string            `json:"kind"`
	Routes         []FeatureRoute    `json:"routes"`
	DigitalWorkers []DigitalWorker   `json:"digital_workers"`
	Fragments      []FragmentBinding `json:"fragments"`
}

type FeatureRoute struct {
	Path          string `json:"path"`
	Authenticated bool   `json:"authenticated"`
	HTML          string `json:"html"`
}

// DigitalWorker attaches an interactive worker to matching routes.
type DigitalWorker struct {
	ID       string       `json:"id"`
	WorkerID string       `json:"worker_id"`
	Attach   WorkerAttach `json:"attach"`
	Routes   []string     `json:"routes"`
}

type WorkerAttach struct {
	Mode     string `json:"mode"`
	Selector string `json:"selector"`
}

// FragmentBinding maps a rendering component to a DOM location.
type FragmentBinding struct {
	ID             string `json:"id"`
	Selector       string `json:"selector"`
	ComponentWorld string `json:"component_world"`
	ComponentName  string `json:"component_name"`
}
