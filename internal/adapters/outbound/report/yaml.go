package report

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/reductor/reductor/internal/domain"
)

// YAMLRenderer emits the run result as YAML for pipeline consumption. The
// result round-trips through its JSON form so YAML keys match the JSON
// contract exactly.
type YAMLRenderer struct{}

func (r *YAMLRenderer) Render(result *domain.RunResult) (string, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return "", err
	}

	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return "", err
	}

	out, err := yaml.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
