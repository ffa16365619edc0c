// Package gui composes a tenant's web GUI from independently versioned
// content packs: it resolves inbound paths against layered route sources,
// renders fragments through sandboxed module or file backends, and grafts
// the results into the host document.
package gui

import "errors"

// ErrNoLayout is returned when a tenant has no layout pack. A tenant
// without a layout cannot serve any page.
var ErrNoLayout = errors.New("gui: no layout pack found for tenant")

// PackProvider acquires packs for a tenant. LoadLayout yields exactly one
// pack or ErrNoLayout; auth, skin and telemetry are optional (nil when
// absent); features come back in the order that decides route precedence.
type PackProvider interface {
	LoadLayout(tenant string) (LayoutPack, error)
	LoadAuth(tenant string) (*AuthPack, error)
	LoadSkin(tenant string) (*SkinPack, error)
	LoadTelemetry(tenant string) (*TelemetryPack, error)
	LoadFeatures(tenant string) ([]FeaturePack, error)

	// ClearCache drops any memoized pack resolutions. Providers without
	// a cache treat this as a no-op.
	ClearCache()
}
