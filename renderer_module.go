package gui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// renderEntryPoint is the global a fragment module must define:
// renderFragment(fragmentID, ctx) returning an HTML string or throwing.
const renderEntryPoint = "renderFragment"

// defaultCallTimeout bounds a single module invocation. A module cannot
// hold a render forever; exceeding the bound counts as a module failure.
const defaultCallTimeout = 5 * time.Second

// ModuleRenderer runs sandboxed fragment modules resolved from
// <assets root>/fragments/<component name>. Compiled programs are cached
// by file path and shared across requests; execution state is a fresh VM
// per call, so nothing leaks between requests or tenants. One renderer is
// safe for concurrent use.
type ModuleRenderer struct {
	cache   ProgramCache
	hosts   *HostFuncRegistry
	timeout time.Duration
	log     zerolog.Logger
}

// ModuleRendererOption configures a ModuleRenderer.
type ModuleRendererOption func(*ModuleRenderer)

// ModuleWithProgramCache replaces the compiled-module cache.
func ModuleWithProgramCache(cache ProgramCache) ModuleRendererOption {
	return func(r *ModuleRenderer) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// ModuleWithHostFuncs exposes registry's functions as globals inside the
// sandbox. The registry is cloned; later mutations do not reach the
// renderer.
func ModuleWithHostFuncs(registry *HostFuncRegistry) ModuleRendererOption {
	return func(r *ModuleRenderer) {
		r.hosts = registry.Clone()
	}
}

// ModuleWithCallTimeout bounds each module invocation. Zero disables the
// bound.
func ModuleWithCallTimeout(timeout time.Duration) ModuleRendererOption {
	return func(r *ModuleRenderer) {
		r.timeout = timeout
	}
}

// ModuleWithLogger attaches a logger to the renderer.
func ModuleWithLogger(log zerolog.Logger) ModuleRendererOption {
	return func(r *ModuleRenderer) {
		r.log = log
	}
}

// NewModuleRenderer constructs a sandboxed module renderer.
func NewModuleRenderer(opts ...ModuleRendererOption) *ModuleRenderer {
	r := &ModuleRenderer{
		cache:   NewProgramCache(),
		timeout: defaultCallTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RenderFragment compiles (or fetches from cache) the binding's module and
// invokes its render entry point in a fresh execution instance. A module
// error whose text carries the missing-secrets marker is reclassified;
// every other module error is a warning and no opinion, leaving room for
// a fallback backend.
func (r *ModuleRenderer) RenderFragment(binding FragmentBinding, assetsRoot string, ctx FragmentContext) (string, bool, error) {
	path := modulePath(assetsRoot, binding.ComponentName)
	program, err := r.loadOrCompile(path)
	if err != nil {
		r.log.Warn().Str("id", binding.ID).Str("module", path).Err(err).Msg("fragment module unavailable")
		return "", false, nil
	}

	html, err := r.invoke(program, binding.ID, ctx)
	if err != nil {
		if strings.Contains(err.Error(), MissingSecretsMarker) {
			return "", false, &MissingSecretsError{Detail: err.Error()}
		}
		r.log.Warn().Str("id", binding.ID).Str("module", path).Err(err).Msg("fragment module render failed")
		return "", false, nil
	}
	return html, true, nil
}

// modulePath resolves a component name under the pack's fragments
// directory, defaulting the extension to .js.
func modulePath(assetsRoot, componentName string) string {
	name := componentName
	if filepath.Ext(name) == "" {
		name += ".js"
	}
	return filepath.Join(assetsRoot, "fragments", name)
}

func (r *ModuleRenderer) loadOrCompile(path string) (*goja.Program, error) {
	if program, ok := r.cache.Get(path); ok {
		return program, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	program, err := goja.Compile(path, string(src), false)
	if err != nil {
		return nil, &RenderError{Backend: "module", Fragment: path, Err: err}
	}
	r.cache.Set(path, program)
	return program, nil
}

// invoke runs program in a fresh VM and calls its render entry point.
// The shared compiled program is read-only; all mutable state lives in
// the per-call VM.
func (r *ModuleRenderer) invoke(program *goja.Program, fragmentID string, ctx FragmentContext) (string, error) {
	vm := goja.New()
	r.injectHostFuncs(vm)
	if r.timeout > 0 {
		timer := time.AfterFunc(r.timeout, func() {
			vm.Interrupt("fragment call deadline exceeded")
		})
		defer timer.Stop()
	}

	if _, err := vm.RunProgram(program); err != nil {
		return "", err
	}
	entry, ok := goja.AssertFunction(vm.Get(renderEntryPoint))
	if !ok {
		return "", fmt.Errorf("module does not define %s", renderEntryPoint)
	}

	value, err := entry(goja.Undefined(), vm.ToValue(fragmentID), vm.ToValue(map[string]string{
		"tenant_ctx": ctx.TenantCtx,
		"user_ctx":   ctx.UserCtx,
		"route":      ctx.Route,
		"session_id": ctx.SessionID,
	}))
	if err != nil {
		return "", err
	}
	html, ok := value.Export().(string)
	if !ok {
		return "", fmt.Errorf("%s returned %s, want string", renderEntryPoint, value.ExportType())
	}
	return html, nil
}

func (r *ModuleRenderer) injectHostFuncs(vm *goja.Runtime) {
	if r.hosts == nil {
		return
	}
	vm.Set("call", func(name string, args ...any) (any, error) {
		return r.hosts.Call(name, args...)
	})
	for _, name := range r.hosts.Names() {
		fn := name
		vm.Set(fn, func(args ...any) (any, error) {
			return r.hosts.Call(fn, args...)
		})
	}
}
