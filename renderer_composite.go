package gui

// CompositeRenderer tries the sandboxed module backend first and falls
// through to the static-file backend only when the module has no opinion.
// This lets a pack ship a compiled module while keeping a file beside it
// as a dev/offline fallback. Errors (missing secrets included) do not fall
// through; they surface from whichever backend produced them.
type CompositeRenderer struct {
	module FragmentRenderer
	file   FragmentRenderer
}

// NewCompositeRenderer chains module before file. A nil module yields a
// file-only chain.
func NewCompositeRenderer(module, file FragmentRenderer) *CompositeRenderer {
	return &CompositeRenderer{module: module, file: file}
}

func (r *CompositeRenderer) RenderFragment(binding FragmentBinding, assetsRoot string, ctx FragmentContext) (string, bool, error) {
	if r.module != nil {
		html, ok, err := r.module.RenderFragment(binding, assetsRoot, ctx)
		if err != nil || ok {
			return html, ok, err
		}
	}
	if r.file == nil {
		return "", false, nil
	}
	return r.file.RenderFragment(binding, assetsRoot, ctx)
}
