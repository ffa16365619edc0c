package gui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileRenderer serves static fragments from
// <assets root>/fragments/<id>.html. A missing file is no opinion, which
// lets it act as the dev/offline fallback behind a module renderer.
type FileRenderer struct {
	log zerolog.Logger
}

// FileRendererOption configures a FileRenderer.
type FileRendererOption func(*FileRenderer)

// FileWithLogger attaches a logger to the renderer.
func FileWithLogger(log zerolog.Logger) FileRendererOption {
	return func(r *FileRenderer) {
		r.log = log
	}
}

// NewFileRenderer constructs a static-file fragment renderer.
func NewFileRenderer(opts ...FileRendererOption) *FileRenderer {
	r := &FileRenderer{log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *FileRenderer) RenderFragment(binding FragmentBinding, assetsRoot string, _ FragmentContext) (string, bool, error) {
	path := filepath.Join(assetsRoot, "fragments", binding.ID+".html")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Warn().Str("path", path).Msg("fragment file not found")
			return "", false, nil
		}
		return "", false, fmt.Errorf("gui: reading fragment %s: %w", path, err)
	}
	return string(content), true, nil
}
