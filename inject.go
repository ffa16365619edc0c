package gui

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// injectRendered parses doc once and grafts each rendered fragment under
// the first node matching its selector, in binding order. A selector that
// matches nothing leaves the document untouched for that binding.
func injectRendered(doc string, rendered []renderedFragment, log zerolog.Logger) (string, error) {
	collected := false
	for _, fragment := range rendered {
		if fragment.ok {
			collected = true
			break
		}
	}
	if !collected {
		return doc, nil
	}

	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("gui: parsing document: %w", err)
	}

	for _, fragment := range rendered {
		if !fragment.ok {
			continue
		}
		if !replaceSelectorContent(parsed, fragment.binding.Selector, fragment.html) {
			log.Warn().
				Str("id", fragment.binding.ID).
				Str("selector", fragment.binding.Selector).
				Msg("fragment selector matched no nodes; skipping injection")
		}
	}

	out, err := goquery.OuterHtml(parsed.Selection)
	if err != nil {
		return "", fmt.Errorf("gui: serializing document: %w", err)
	}
	return out, nil
}

// replaceSelectorContent detaches the children of the first node matching
// selector and grafts markup in their place. The markup is parsed as a
// fragment in the target node's context, so multi-root and loosely formed
// markup still parses. Returns false when the selector matches nothing.
func replaceSelectorContent(doc *goquery.Document, selector, markup string) bool {
	target := doc.Find(selector).First()
	if target.Length() == 0 {
		return false
	}
	target.Empty()
	target.AppendHtml(markup)
	return true
}
