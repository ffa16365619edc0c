package gui

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// AnonymousUserCtx is the fixed user-context marker rendered for requests
// without a session.
const AnonymousUserCtx = "{}"

// MissingSecretsMarker is the substring a module error must contain to be
// classified as a missing-secrets condition.
const MissingSecretsMarker = "missing_secrets"

const (
	missingSecretsText = "missing secrets for fragment"
	renderFailedText   = "fragment render failed"
)

// FragmentContext carries the request inputs a fragment renders against.
// All fields are plain strings so they cross the sandbox boundary as-is.
type FragmentContext struct {
	TenantCtx string
	UserCtx   string
	Route     string
	SessionID string
}

func contextFor(session *Session, tenant, route string) FragmentContext {
	ctx := FragmentContext{
		TenantCtx: tenant,
		UserCtx:   AnonymousUserCtx,
		Route:     route,
	}
	if session != nil {
		ctx.SessionID = session.ID
		if session.UserID != "" {
			ctx.UserCtx = session.UserID
		}
	}
	return ctx
}

// MissingSecretsError marks a fragment failure an operator can act on:
// the module ran but its secrets were not provisioned.
type MissingSecretsError struct {
	Detail string
}

func (e *MissingSecretsError) Error() string {
	return fmt.Sprintf("gui: missing secrets: %s", e.Detail)
}

// RenderError wraps a fragment failure with the binding it belongs to.
type RenderError struct {
	Backend  string
	Fragment string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("gui: %s renderer fragment=%q: %v", e.Backend, e.Fragment, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// FragmentRenderer produces markup for a binding. ok=false with a nil
// error means the backend has no opinion and the next backend (or nothing)
// should run. A *MissingSecretsError distinguishes the operator-actionable
// failure; any other error is a generic fragment failure.
type FragmentRenderer interface {
	RenderFragment(binding FragmentBinding, assetsRoot string, ctx FragmentContext) (html string, ok bool, err error)
}

// InjectOption configures fragment injection.
type InjectOption func(*injectConfig)

type injectConfig struct {
	log zerolog.Logger
}

// InjectWithLogger attaches a logger to the injection pipeline.
func InjectWithLogger(log zerolog.Logger) InjectOption {
	return func(cfg *injectConfig) {
		cfg.log = log
	}
}

type renderedFragment struct {
	binding FragmentBinding
	html    string
	ok      bool
}

// InjectFragments renders every target through renderer and grafts the
// results into doc. Fragment failures never abort the page: missing
// secrets and generic errors render as inline placeholders, no-opinion
// targets are skipped, and injection applies in binding order so
// overlapping selectors stay deterministic.
func InjectFragments(doc string, targets []FragmentTarget, session *Session, tenant, route string, renderer FragmentRenderer, opts ...InjectOption) (string, error) {
	if len(targets) == 0 {
		return doc, nil
	}
	cfg := injectConfig{log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	ctx := contextFor(session, tenant, route)

	// Each target owns an independent selector, so rendering fans out;
	// results land in an indexed slice to preserve binding order.
	rendered := make([]renderedFragment, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target FragmentTarget) {
			defer wg.Done()
			rendered[i] = renderOne(target, ctx, renderer, cfg.log)
		}(i, target)
	}
	wg.Wait()

	return injectRendered(doc, rendered, cfg.log)
}

func renderOne(target FragmentTarget, ctx FragmentContext, renderer FragmentRenderer, log zerolog.Logger) renderedFragment {
	binding := target.Binding
	html, ok, err := renderer.RenderFragment(binding, target.AssetsRoot, ctx)
	switch {
	case err == nil && ok:
		return renderedFragment{binding: binding, html: html, ok: true}
	case err == nil:
		log.Debug().Str("id", binding.ID).Msg("fragment renderer returned no opinion")
		return renderedFragment{binding: binding}
	}

	if _, missing := err.(*MissingSecretsError); missing {
		log.Warn().
			Str("id", binding.ID).
			Str("selector", binding.Selector).
			Str("assets", target.AssetsRoot).
			Err(err).
			Msg("fragment missing secrets")
		return renderedFragment{
			binding: binding,
			html:    errorPlaceholder(binding.ID, missingSecretsText),
			ok:      true,
		}
	}

	log.Error().
		Str("id", binding.ID).
		Str("selector", binding.Selector).
		Str("assets", target.AssetsRoot).
		Err(err).
		Msg("fragment renderer failed")
	return renderedFragment{
		binding: binding,
		html:    errorPlaceholder(binding.ID, renderFailedText),
		ok:      true,
	}
}

func errorPlaceholder(id, text string) string {
	return fmt.Sprintf(`<div class="fragment-error" data-fragment-id=%q>%s</div>`, id, text)
}
