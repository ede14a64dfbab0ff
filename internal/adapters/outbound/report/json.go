package report

import (
	"bytes"
	"encoding/json"

	"github.com/reductor/reductor/internal/domain"
)

// JSONRenderer emits the run result verbatim as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(result *domain.RunResult) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return "", err
	}
	return buf.String(), nil
}
