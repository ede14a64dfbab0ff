// Package features binds per-test semantic vectors and metadata into the
// records handed to clustering and analysis.
package features

import (
	"github.com/reductor/reductor/internal/domain"
)

// Assemble pairs each test with its semantic vector and metadata. The
// metadata's coverage lines are the raw pre-exclusion keys; the analyzer's
// coverage-preservation gate needs them untouched. Records are emitted in
// input test order.
func Assemble(tests []domain.TestRecord, vectors map[string][]float64) []domain.FeatureRecord {
	records := make([]domain.FeatureRecord, 0, len(tests))
	for _, t := range tests {
		keys := t.CoverageKeys()
		records = append(records, domain.FeatureRecord{
			TestID: t.TestID,
			Vector: vectors[t.TestID],
			Metadata: domain.FeatureMetadata{
				CoverageLines:   keys,
				ExecutionTimeMs: t.ExecTimeMs,
				LinesCovered:    len(keys),
				Path:            t.Path,
				Method:          t.Method,
				RecentFailRate:  t.RecentFailRate,
			},
		})
	}
	return records
}
