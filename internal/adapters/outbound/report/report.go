// Package report renders run results in the supported output formats.
package report

import (
	"fmt"

	"github.com/reductor/reductor/internal/domain"
)

// For returns the renderer matching the configured output format.
func For(format string) (domain.Renderer, error) {
	switch format {
	case domain.FormatMarkdown:
		return &MarkdownRenderer{}, nil
	case domain.FormatJSON:
		return &JSONRenderer{}, nil
	case domain.FormatYAML:
		return &YAMLRenderer{}, nil
	case domain.FormatHTML:
		return &HTMLRenderer{}, nil
	default:
		return nil, &domain.ConfigError{Field: "output_format", Reason: fmt.Sprintf("unknown format %q", format)}
	}
}
