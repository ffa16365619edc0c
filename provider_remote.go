package gui

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnsupportedArtifact is returned when a distributor hands back an
// opaque artifact handle that is not an existing local path. Materializing
// such handles is a known integration gap; it fails explicitly rather than
// pretending the pack loaded.
var ErrUnsupportedArtifact = errors.New("gui: unsupported remote artifact handle")

// PackRef names a versioned pack component at the distributor.
type PackRef struct {
	PackID      string `json:"pack_id"`
	ComponentID string `json:"component_id"`
	Version     string `json:"version"`
}

// ResolveRequest asks the distributor where a pack's artifact lives.
type ResolveRequest struct {
	Tenant string
	Kind   PackKind
	Ref    PackRef
}

// ArtifactLocation is the closed set of places a resolved artifact can be.
type ArtifactLocation interface {
	artifactLocation()
}

// LocalPathArtifact points at a pack root already present on disk.
type LocalPathArtifact struct {
	Path string
}

// ImageRefArtifact references a downloadable archive image.
type ImageRefArtifact struct {
	Reference string
}

// OpaqueHandleArtifact is a distributor-internal handle. Only handles that
// happen to be existing local paths can be materialized.
type OpaqueHandleArtifact struct {
	Handle string
}

func (LocalPathArtifact) artifactLocation()    {}
func (ImageRefArtifact) artifactLocation()     {}
func (OpaqueHandleArtifact) artifactLocation() {}

// ArtifactResolver is the remote pack-acquisition contract.
type ArtifactResolver interface {
	ResolveComponent(req ResolveRequest) (ArtifactLocation, error)
}

// RemoteProvider loads packs through an ArtifactResolver, materializing
// artifacts locally and memoizing the resulting pack root per
// (tenant, kind) until ClearCache.
type RemoteProvider struct {
	resolver ArtifactResolver
	refs     map[PackKind]PackRef

	mu    sync.Mutex
	cache map[string]string

	client   *http.Client
	bearer   string
	username string
	password string
	log      zerolog.Logger
}

// RemoteProviderOption configures a RemoteProvider.
type RemoteProviderOption func(*RemoteProvider)

// RemoteWithLogger attaches a logger to the provider.
func RemoteWithLogger(log zerolog.Logger) RemoteProviderOption {
	return func(p *RemoteProvider) {
		p.log = log
	}
}

// RemoteWithHTTPClient replaces the HTTP client used for image downloads.
func RemoteWithHTTPClient(client *http.Client) RemoteProviderOption {
	return func(p *RemoteProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// RemoteWithBearerToken authenticates image downloads with a bearer token.
func RemoteWithBearerToken(token string) RemoteProviderOption {
	return func(p *RemoteProvider) {
		p.bearer = token
	}
}

// RemoteWithBasicAuth authenticates image downloads with basic credentials.
func RemoteWithBasicAuth(username, password string) RemoteProviderOption {
	return func(p *RemoteProvider) {
		p.username = username
		p.password = password
	}
}

// NewRemoteProvider constructs a provider that resolves the given pack
// references through resolver. Kinds absent from refs load as absent packs.
func NewRemoteProvider(resolver ArtifactResolver, refs map[PackKind]PackRef, opts ...RemoteProviderOption) *RemoteProvider {
	p := &RemoteProvider{
		resolver: resolver,
		refs:     refs,
		cache:    make(map[string]string),
		client:   &http.Client{Timeout: 60 * time.Second},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func cacheKey(tenant string, kind PackKind) string {
	return tenant + "::" + string(kind)
}

// resolveRoot returns the local pack root for (tenant, kind), consulting
// the cache first. Lookup-or-insert runs under one exclusive lock; the
// insert is a single write, so an abandoned request can only leave the
// cache untouched, never half-written.
func (p *RemoteProvider) resolveRoot(tenant string, kind PackKind) (string, bool, error) {
	ref, ok := p.refs[kind]
	if !ok {
		return "", false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := cacheKey(tenant, kind)
	if root, ok := p.cache[key]; ok {
		p.log.Debug().Str("tenant", tenant).Str("kind", string(kind)).Msg("pack resolution cache hit")
		return root, true, nil
	}

	loc, err := p.resolver.ResolveComponent(ResolveRequest{Tenant: tenant, Kind: kind, Ref: ref})
	if err != nil {
		return "", false, fmt.Errorf("gui: resolving %s pack for tenant %s: %w", kind, tenant, err)
	}
	root, err := p.materialize(loc)
	if err != nil {
		return "", false, err
	}
	p.cache[key] = root
	return root, true, nil
}

func (p *RemoteProvider) materialize(loc ArtifactLocation) (string, error) {
	switch artifact := loc.(type) {
	case LocalPathArtifact:
		return artifact.Path, nil
	case ImageRefArtifact:
		return p.fetchImage(artifact.Reference)
	case OpaqueHandleArtifact:
		if _, err := os.Stat(artifact.Handle); err == nil {
			return artifact.Handle, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedArtifact, artifact.Handle)
	default:
		return "", fmt.Errorf("gui: unknown artifact location %T", loc)
	}
}

// fetchImage downloads an archive image into a fresh temp directory and
// unpacks it there, trying gzip-compressed tar first and plain tar second.
func (p *RemoteProvider) fetchImage(reference string) (string, error) {
	tmpDir := filepath.Join(os.TempDir(), "greentic_gui_"+uuid.NewString())
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("gui: creating artifact dir: %w", err)
	}
	archivePath := filepath.Join(tmpDir, "artifact.tar")

	req, err := http.NewRequest(http.MethodGet, reference, nil)
	if err != nil {
		return "", fmt.Errorf("gui: building artifact request for %s: %w", reference, err)
	}
	req.Header.Set("User-Agent", "greentic-gui/0.1")
	if p.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+p.bearer)
	} else if p.username != "" || p.password != "" {
		req.SetBasicAuth(p.username, p.password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gui: downloading %s: %w", reference, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("gui: downloading %s: status %s", reference, resp.Status)
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("gui: writing artifact archive: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return "", fmt.Errorf("gui: writing artifact archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("gui: writing artifact archive: %w", err)
	}

	if err := extractTarGz(archivePath, tmpDir); err != nil {
		p.log.Warn().Err(err).Str("archive", archivePath).Msg("gzip extraction failed; trying plain tar")
		if err := extractTar(archivePath, tmpDir); err != nil {
			return "", fmt.Errorf("gui: extracting %s: %w", reference, err)
		}
	}
	return tmpDir, nil
}

func extractTarGz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()
	return unpack(tar.NewReader(gz), dest)
}

func extractTar(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return unpack(tar.NewReader(f), dest)
}

func unpack(reader *tar.Reader, dest string) error {
	for {
		header, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target, err := safeJoin(dest, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0o777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, reader); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
}

// safeJoin rejects archive entries that would escape the destination root.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.Clean("/"+name))
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("gui: archive entry %q escapes extraction root", name)
	}
	return target, nil
}

// loadPack resolves and decodes the pack of the given kind. A manifest
// whose body does not match its declared kind makes the pack absent.
func (p *RemoteProvider) loadPack(tenant string, kind PackKind) (GuiPack, bool, error) {
	root, ok, err := p.resolveRoot(tenant, kind)
	if err != nil || !ok {
		return nil, false, err
	}
	manifest, err := readManifest(root)
	if err != nil {
		return nil, false, err
	}
	return decodePack(root, manifest, kind)
}

func (p *RemoteProvider) LoadLayout(tenant string) (LayoutPack, error) {
	pack, ok, err := p.loadPack(tenant, PackKindLayout)
	if err != nil {
		return LayoutPack{}, err
	}
	if !ok {
		return LayoutPack{}, fmt.Errorf("%w: %s", ErrNoLayout, tenant)
	}
	return pack.(LayoutPack), nil
}

func (p *RemoteProvider) LoadAuth(tenant string) (*AuthPack, error) {
	pack, ok, err := p.loadPack(tenant, PackKindAuth)
	if err != nil || !ok {
		return nil, err
	}
	auth := pack.(AuthPack)
	return &auth, nil
}

func (p *RemoteProvider) LoadSkin(tenant string) (*SkinPack, error) {
	pack, ok, err := p.loadPack(tenant, PackKindSkin)
	if err != nil || !ok {
		return nil, err
	}
	skin := pack.(SkinPack)
	return &skin, nil
}

func (p *RemoteProvider) LoadTelemetry(tenant string) (*TelemetryPack, error) {
	pack, ok, err := p.loadPack(tenant, PackKindTelemetry)
	if err != nil || !ok {
		return nil, err
	}
	tel := pack.(TelemetryPack)
	return &tel, nil
}

// LoadFeatures returns the single configured feature pack, if any. The
// distributor contract carries one component per kind.
func (p *RemoteProvider) LoadFeatures(tenant string) ([]FeaturePack, error) {
	pack, ok, err := p.loadPack(tenant, PackKindFeature)
	if err != nil || !ok {
		return nil, err
	}
	return []FeaturePack{pack.(FeaturePack)}, nil
}

// ClearCache drops all memoized pack resolutions at once. Invalidation is
// wholesale only.
func (p *RemoteProvider) ClearCache() {
	p.mu.Lock()
	p.cache = make(map[string]string)
	p.mu.Unlock()
	p.log.Info().Msg("pack resolution cache cleared")
}
