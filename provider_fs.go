package gui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FSProvider loads packs from a directory tree laid out as
// <root>/<tenant>/<pack-dir>/gui/manifest.json, for development and tests.
// Feature precedence follows lexical pack-directory order, which is how
// os.ReadDir enumerates.
type FSProvider struct {
	root string
	log  zerolog.Logger
}

// FSProviderOption configures an FSProvider.
type FSProviderOption func(*FSProvider)

// FSWithLogger attaches a logger to the provider.
func FSWithLogger(log zerolog.Logger) FSProviderOption {
	return func(p *FSProvider) {
		p.log = log
	}
}

// NewFSProvider constructs a filesystem-backed pack provider rooted at root.
func NewFSProvider(root string, opts ...FSProviderOption) *FSProvider {
	p := &FSProvider{
		root: root,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *FSProvider) discoverPacks(tenant string) ([]string, error) {
	tenantRoot := filepath.Join(p.root, tenant)
	entries, err := os.ReadDir(tenantRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("gui: reading tenant directory %s: %w", tenantRoot, err)
	}
	var packs []string
	for _, entry := range entries {
		if entry.IsDir() {
			packs = append(packs, filepath.Join(tenantRoot, entry.Name()))
		}
	}
	return packs, nil
}

// loadFirst returns the first pack of the wanted kind among the tenant's
// pack directories. Packs of other kinds are skipped, not errors.
func (p *FSProvider) loadFirst(tenant string, want PackKind) (GuiPack, bool, error) {
	roots, err := p.discoverPacks(tenant)
	if err != nil {
		return nil, false, err
	}
	for _, root := range roots {
		manifest, err := readManifest(root)
		if err != nil {
			return nil, false, err
		}
		pack, ok, err := decodePack(root, manifest, want)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return pack, true, nil
		}
	}
	return nil, false, nil
}

func (p *FSProvider) LoadLayout(tenant string) (LayoutPack, error) {
	pack, ok, err := p.loadFirst(tenant, PackKindLayout)
	if err != nil {
		return LayoutPack{}, err
	}
	if !ok {
		return LayoutPack{}, fmt.Errorf("%w: %s", ErrNoLayout, tenant)
	}
	return pack.(LayoutPack), nil
}

func (p *FSProvider) LoadAuth(tenant string) (*AuthPack, error) {
	pack, ok, err := p.loadFirst(tenant, PackKindAuth)
	if err != nil || !ok {
		return nil, err
	}
	auth := pack.(AuthPack)
	return &auth, nil
}

func (p *FSProvider) LoadSkin(tenant string) (*SkinPack, error) {
	pack, ok, err := p.loadFirst(tenant, PackKindSkin)
	if err != nil || !ok {
		return nil, err
	}
	skin := pack.(SkinPack)
	return &skin, nil
}

func (p *FSProvider) LoadTelemetry(tenant string) (*TelemetryPack, error) {
	pack, ok, err := p.loadFirst(tenant, PackKindTelemetry)
	if err != nil || !ok {
		return nil, err
	}
	tel := pack.(TelemetryPack)
	return &tel, nil
}

func (p *FSProvider) LoadFeatures(tenant string) ([]FeaturePack, error) {
	roots, err := p.discoverPacks(tenant)
	if err != nil {
		return nil, err
	}
	var features []FeaturePack
	for _, root := range roots {
		manifest, err := readManifest(root)
		if err != nil {
			return nil, err
		}
		pack, ok, err := decodePack(root, manifest, PackKindFeature)
		if err != nil {
			return nil, err
		}
		if ok {
			features = append(features, pack.(FeaturePack))
		}
	}
	return features, nil
}

// ClearCache is a no-op: the filesystem provider reads packs on demand.
func (p *FSProvider) ClearCache() {}
