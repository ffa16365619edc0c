package gui

import (
	"errors"
	"strings"
	"testing"
)

// renderFunc adapts a function to FragmentRenderer for tests.
type renderFunc func(binding FragmentBinding, assetsRoot string, ctx FragmentContext) (string, bool, error)

func (f renderFunc) RenderFragment(binding FragmentBinding, assetsRoot string, ctx FragmentContext) (string, bool, error) {
	return f(binding, assetsRoot, ctx)
}

func staticRenderer(html string) FragmentRenderer {
	return renderFunc(func(FragmentBinding, string, FragmentContext) (string, bool, error) {
		return html, true, nil
	})
}

func targetFor(id, selector string) FragmentTarget {
	return FragmentTarget{
		Binding: FragmentBinding{
			ID:             id,
			Selector:       selector,
			ComponentWorld: "gui-fragment@1.0.0",
			ComponentName:  id,
		},
		AssetsRoot: "/tmp/assets",
	}
}

const hostDoc = `<html><head></head><body><div id="target">old</div></body></html>`

func TestInjectFragmentsReplacesTargetChildren(t *testing.T) {
	out, err := InjectFragments(hostDoc,
		[]FragmentTarget{targetFor("test", "#target")},
		nil, "tenant", "/", staticRenderer(`<span class="injected">ok</span>`))
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if !strings.Contains(out, `class="injected"`) {
		t.Errorf("output missing injected markup: %s", out)
	}
	if strings.Contains(out, "old") {
		t.Errorf("output still contains replaced children: %s", out)
	}
}

func TestInjectFragmentsNoBindings(t *testing.T) {
	out, err := InjectFragments(hostDoc, nil, nil, "tenant", "/", staticRenderer("<i>x</i>"))
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if out != hostDoc {
		t.Errorf("document changed with no bindings:\n got %q\nwant %q", out, hostDoc)
	}
}

func TestInjectFragmentsSelectorMissLeavesDocumentIdentical(t *testing.T) {
	out, err := InjectFragments(hostDoc,
		[]FragmentTarget{targetFor("test", "#missing")},
		nil, "tenant", "/", staticRenderer("<i>x</i>"))
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if out != hostDoc {
		t.Errorf("document changed despite selector miss:\n got %q\nwant %q", out, hostDoc)
	}
}

func TestInjectFragmentsMultiRootMarkup(t *testing.T) {
	out, err := InjectFragments(hostDoc,
		[]FragmentTarget{targetFor("test", "#target")},
		nil, "tenant", "/", staticRenderer(`<b>one</b><i>two</i>`))
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if !strings.Contains(out, "<b>one</b>") || !strings.Contains(out, "<i>two</i>") {
		t.Errorf("multi-root fragment lost nodes: %s", out)
	}
}

func TestInjectFragmentsAppliesInBindingOrder(t *testing.T) {
	first := targetFor("first", "#target")
	second := targetFor("second", "#target")
	renderer := renderFunc(func(binding FragmentBinding, _ string, _ FragmentContext) (string, bool, error) {
		return "<em>" + binding.ID + "</em>", true, nil
	})

	out, err := InjectFragments(hostDoc, []FragmentTarget{first, second}, nil, "tenant", "/", renderer)
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if strings.Contains(out, "first") {
		t.Errorf("earlier binding should have been overwritten by the later one: %s", out)
	}
	if !strings.Contains(out, "second") {
		t.Errorf("later binding missing from output: %s", out)
	}
}

func TestInjectFragmentsSkipsNoOpinionSilently(t *testing.T) {
	renderer := renderFunc(func(FragmentBinding, string, FragmentContext) (string, bool, error) {
		return "", false, nil
	})
	out, err := InjectFragments(hostDoc,
		[]FragmentTarget{targetFor("test", "#target")},
		nil, "tenant", "/", renderer)
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if out != hostDoc {
		t.Errorf("no-opinion render must leave the document unchanged: %q", out)
	}
}

func TestInjectFragmentsMissingSecretsPlaceholder(t *testing.T) {
	renderer := renderFunc(func(binding FragmentBinding, _ string, _ FragmentContext) (string, bool, error) {
		if binding.ID == "broken" {
			return "", false, &MissingSecretsError{Detail: "missing_secrets: api_key"}
		}
		return `<span class="healthy">fine</span>`, true, nil
	})
	doc := `<html><head></head><body><div id="a">x</div><div id="b">y</div></body></html>`

	out, err := InjectFragments(doc,
		[]FragmentTarget{targetFor("broken", "#a"), targetFor("healthy", "#b")},
		nil, "tenant", "/", renderer)
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if !strings.Contains(out, "missing secrets for fragment") {
		t.Errorf("output missing the missing-secrets placeholder: %s", out)
	}
	if !strings.Contains(out, `data-fragment-id="broken"`) {
		t.Errorf("placeholder not tagged with binding id: %s", out)
	}
	if !strings.Contains(out, `class="healthy"`) {
		t.Errorf("unrelated fragment must render unaffected: %s", out)
	}
}

func TestInjectFragmentsGenericFailurePlaceholder(t *testing.T) {
	renderer := renderFunc(func(FragmentBinding, string, FragmentContext) (string, bool, error) {
		return "", false, errors.New("boom")
	})
	out, err := InjectFragments(hostDoc,
		[]FragmentTarget{targetFor("test", "#target")},
		nil, "tenant", "/", renderer)
	if err != nil {
		t.Fatalf("InjectFragments: %v", err)
	}
	if !strings.Contains(out, "fragment render failed") {
		t.Errorf("output missing the failure placeholder: %s", out)
	}
	if strings.Contains(out, "old") {
		t.Errorf("placeholder should replace existing children: %s", out)
	}
}

func TestContextFor(t *testing.T) {
	anon := contextFor(nil, "acme", "/invoices")
	if anon.UserCtx != AnonymousUserCtx || anon.SessionID != "" {
		t.Errorf("anonymous context = %+v", anon)
	}
	if anon.TenantCtx != "acme" || anon.Route != "/invoices" {
		t.Errorf("context fields = %+v", anon)
	}

	authed := contextFor(&Session{ID: "sess-1", UserID: "user-1"}, "acme", "/invoices")
	if authed.UserCtx != "user-1" || authed.SessionID != "sess-1" {
		t.Errorf("authenticated context = %+v", authed)
	}
}
