package gui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

const manifestRelPath = "gui/manifest.json"

// readManifest loads and validates <packRoot>/gui/manifest.json. An
// unreadable or syntactically invalid manifest is an error; the caller
// decides whether the pack's declared kind is of interest.
func readManifest(packRoot string) (gjson.Result, error) {
	path := filepath.Join(packRoot, "gui", "manifest.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("gui: opening manifest %s: %w", path, err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("gui: manifest %s is not valid JSON", path)
	}
	return gjson.ParseBytes(raw), nil
}

// decodePack turns a manifest into the pack variant matching want. A
// manifest whose kind discriminator differs from want is not an error: the
// pack is treated as absent so directory scans can skip unrelated bundles.
func decodePack(packRoot string, manifest gjson.Result, want PackKind) (GuiPack, bool, error) {
	kind := manifest.Get("kind").String()
	if kind != string(want) {
		return nil, false, nil
	}
	switch want {
	case PackKindLayout:
		var m LayoutManifest
		if err := json.Unmarshal([]byte(manifest.Raw), &m); err != nil {
			return nil, false, fmt.Errorf("gui: parse layout manifest in %s: %w", packRoot, err)
		}
		return LayoutPack{Manifest: m, PackRoot: packRoot}, true, nil
	case PackKindAuth:
		var m AuthManifest
		if err := json.Unmarshal([]byte(manifest.Raw), &m); err != nil {
			return nil, false, fmt.Errorf("gui: parse auth manifest in %s: %w", packRoot, err)
		}
		return AuthPack{Manifest: m, PackRoot: packRoot}, true, nil
	case PackKindFeature:
		var m FeatureManifest
		if err := json.Unmarshal([]byte(manifest.Raw), &m); err != nil {
			return nil, false, fmt.Errorf("gui: parse feature manifest in %s: %w", packRoot, err)
		}
		return FeaturePack{Manifest: m, PackRoot: packRoot}, true, nil
	case PackKindSkin:
		return SkinPack{Data: manifest, PackRoot: packRoot}, true, nil
	case PackKindTelemetry:
		return TelemetryPack{Data: manifest, PackRoot: packRoot}, true, nil
	default:
		return nil, false, fmt.Errorf("gui: unknown pack kind %q", want)
	}
}
