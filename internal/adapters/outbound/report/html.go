package report

import (
	"html/template"
	"strings"

	"github.com/reductor/reductor/internal/domain"
)

// HTMLRenderer produces a self-contained report page for CI artifact
// uploads.
type HTMLRenderer struct{}

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Test Redundancy Report — {{.RunID}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: right; }
th { background: #f5f5f5; }
.finding { border: 1px solid #ddd; border-radius: 6px; padding: 1rem; margin: 1rem 0; }
.priority-high { border-left: 6px solid #c0392b; }
.priority-medium { border-left: 6px solid #e67e22; }
.priority-low { border-left: 6px solid #7f8c8d; }
code { background: #f0f0f0; padding: 0 0.25rem; }
.errors { color: #c0392b; }
</style>
</head>
<body>
<h1>Test Redundancy Report</h1>
<p>Run <code>{{.RunID}}</code>{{if .CommitHash}} at commit <code>{{.CommitHash}}</code>{{end}} — analyzed in {{printf "%.2f" .ExecutionTimeSec}}s</p>
{{if not .Success}}
<h2 class="errors">Run failed</h2>
<ul class="errors">{{range .Errors}}<li>{{.}}</li>{{end}}</ul>
{{else}}
<h2>Summary</h2>
<table>
<tr><th>Tests</th><th>Clusters</th><th>Findings</th><th>Redundant tests</th><th>Potential reduction</th></tr>
<tr><td>{{.Metrics.TotalTests}}</td><td>{{.Metrics.ClustersFound}}</td><td>{{.Metrics.RedundancyFindings}}</td><td>{{.Metrics.RedundantTests}}</td><td>{{printf "%.2f" .Metrics.ReductionPercentage}}%</td></tr>
</table>
{{if .Findings}}
<h2>Findings</h2>
{{range .Findings}}
<div class="finding priority-{{.Priority}}">
<h3>Cluster {{.ClusterID}} — {{.Priority}} priority</h3>
<p>{{.Recommendation}}</p>
<p>Keep <code>{{.RepresentativeTestID}}</code>, remove:</p>
<ul>{{range .RedundantTestIDs}}<li><code>{{.}}</code></li>{{end}}</ul>
<p>Score {{printf "%.3f" .RedundancyScore}}, cluster size {{.Analysis.ClusterSize}}{{if .Savings}}, saves {{printf "%.1f" .Savings.TimeSavedSec}}s per run{{end}}</p>
</div>
{{end}}
{{else}}
<p>No redundancy found.</p>
{{end}}
{{end}}
</body>
</html>
`))

func (r *HTMLRenderer) Render(result *domain.RunResult) (string, error) {
	var b strings.Builder
	if err := htmlReport.Execute(&b, result); err != nil {
		return "", err
	}
	return b.String(), nil
}
