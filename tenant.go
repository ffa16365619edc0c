package gui

// TenantGuiConfig is the per-tenant view the resolver and pipeline work
// against: exactly one layout, at most one auth pack, optional skin and
// telemetry locations, and an ordered list of feature packs whose order
// decides route-matching precedence.
type TenantGuiConfig struct {
	TenantID  string        `json:"tenant"`
	Domain    string        `json:"domain"`
	Layout    LayoutPack    `json:"layout"`
	Auth      *AuthPack     `json:"auth,omitempty"`
	Skin      *PackLocation `json:"skin,omitempty"`
	Telemetry *PackLocation `json:"telemetry,omitempty"`
	Features  []FeaturePack `json:"features"`
}

// LoadTenantGuiConfig assembles the tenant view from provider. It fails
// fast when the layout is missing; every other pack is optional.
func LoadTenantGuiConfig(tenant, domain string, provider PackProvider) (*TenantGuiConfig, error) {
	layout, err := provider.LoadLayout(tenant)
	if err != nil {
		return nil, err
	}
	auth, err := provider.LoadAuth(tenant)
	if err != nil {
		return nil, err
	}
	skin, err := provider.LoadSkin(tenant)
	if err != nil {
		return nil, err
	}
	telemetry, err := provider.LoadTelemetry(tenant)
	if err != nil {
		return nil, err
	}
	features, err := provider.LoadFeatures(tenant)
	if err != nil {
		return nil, err
	}

	cfg := &TenantGuiConfig{
		TenantID: tenant,
		Domain:   domain,
		Layout:   layout,
		Auth:     auth,
		Features: features,
	}
	if skin != nil {
		loc := skin.Location()
		cfg.Skin = &loc
	}
	if telemetry != nil {
		loc := telemetry.Location()
		cfg.Telemetry = &loc
	}
	return cfg, nil
}

// TenantMap resolves inbound domains to tenant identifiers, falling back
// to a default tenant for unmapped domains.
type TenantMap struct {
	Domains map[string]string
	Default string
}

// TenantFor returns the tenant serving domain.
func (m TenantMap) TenantFor(domain string) string {
	if tenant, ok := m.Domains[domain]; ok {
		return tenant
	}
	return m.Default
}

// ClientRoute is the route shape exposed to the browser.
type ClientRoute struct {
	Path          string `json:"path"`
	Authenticated bool   `json:"authenticated"`
}

// ClientConfig summarizes the tenant view for client-side routing.
type ClientConfig struct {
	Tenant  string          `json:"tenant"`
	Domain  string          `json:"domain"`
	Routes  []ClientRoute   `json:"routes"`
	Workers []DigitalWorker `json:"workers"`
	Skin    string          `json:"skin,omitempty"`
}

// ClientConfig flattens feature routes and workers, in pack order, into
// the summary served to the client.
func (c *TenantGuiConfig) ClientConfig() ClientConfig {
	out := ClientConfig{
		Tenant:  c.TenantID,
		Domain:  c.Domain,
		Routes:  []ClientRoute{},
		Workers: []DigitalWorker{},
	}
	for _, feature := range c.Features {
		for _, route := range feature.Manifest.Routes {
			out.Routes = append(out.Routes, ClientRoute{
				Path:          route.Path,
				Authenticated: route.Authenticated,
			})
		}
		out.Workers = append(out.Workers, feature.Manifest.DigitalWorkers...)
	}
	if c.Skin != nil {
		out.Skin = c.Skin.Assets
	}
	return out
}
