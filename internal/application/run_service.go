// Package application orchestrates the redundancy-detection pipeline:
// read run → fingerprints ∥ semantic vectors → features → clustering →
// cluster analysis → recommendations.
package application

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reductor/reductor/internal/domain"
	"github.com/reductor/reductor/internal/domain/analyze"
	"github.com/reductor/reductor/internal/domain/cluster"
	"github.com/reductor/reductor/internal/domain/features"
	"github.com/reductor/reductor/internal/domain/fingerprint"
	"github.com/reductor/reductor/internal/domain/semantic"
)

// RunService runs the full pipeline for one test run at a time. Every
// intermediate artifact is owned by the run and dropped when it returns.
type RunService struct {
	reader    domain.RunReader
	clusterer domain.Clusterer
	gitInfo   domain.GitInfo
	history   domain.RunHistory
	logger    zerolog.Logger
}

// NewRunService wires the pipeline's collaborators. gitInfo and history are
// optional; pass nil to skip commit attachment and history persistence.
func NewRunService(
	reader domain.RunReader,
	clusterer domain.Clusterer,
	gitInfo domain.GitInfo,
	history domain.RunHistory,
	logger zerolog.Logger,
) *RunService {
	return &RunService{
		reader:    reader,
		clusterer: clusterer,
		gitInfo:   gitInfo,
		history:   history,
		logger:    logger,
	}
}

// AnalyzeRun executes the pipeline for runID and returns the single result
// envelope: findings, partition, and metrics on success, collected errors
// otherwise. projectPath is only used for commit attachment and history.
func (s *RunService) AnalyzeRun(ctx context.Context, runID, projectPath string, cfg domain.EngineConfig) *domain.RunResult {
	start := time.Now()

	fail := func(err error) *domain.RunResult {
		return &domain.RunResult{
			RunID:            runID,
			Success:          false,
			Errors:           []string{err.Error()},
			ExecutionTimeSec: time.Since(start).Seconds(),
		}
	}

	if err := cfg.Validate(); err != nil {
		return fail(err)
	}

	info, err := s.reader.Info(ctx, runID)
	if err != nil {
		return fail(err)
	}
	s.logger.Info().
		Str("run_id", runID).
		Int("tests", info.TestCount).
		Int("coverage_lines", info.CoverageLineCount).
		Int("files", info.UniqueFiles).
		Msg("starting analysis")

	tests, err := s.reader.Tests(ctx, runID)
	if err != nil {
		return fail(err)
	}

	if err := checkpoint(ctx); err != nil {
		return fail(err)
	}

	vectors, fingerprints, err := s.buildFeatures(tests, cfg)
	if err != nil {
		return fail(err)
	}
	s.logFingerprintDiagnostics(tests, fingerprints)

	if err := checkpoint(ctx); err != nil {
		return fail(err)
	}

	records := features.Assemble(tests, vectors)

	result := &domain.RunResult{RunID: runID, Success: true}

	if len(records) >= 2 {
		dispatcher := cluster.NewDispatcher(s.clusterer, cfg)
		partition, err := dispatcher.Dispatch(ctx, records, cfg)
		if err != nil {
			return fail(err)
		}
		s.logger.Debug().Int("clusters", len(partition.ClusterIDs())).Msg("partition received")

		if err := checkpoint(ctx); err != nil {
			return fail(err)
		}

		byID := make(map[string]domain.FeatureRecord, len(records))
		for _, r := range records {
			byID[r.TestID] = r
		}

		findings := analyze.NewAnalyzer(cfg).Analyze(partition, byID)
		findings = analyze.Compose(findings)

		result.Partition = partition
		result.Findings = findings
	}

	result.Metrics = domain.ComputeMetrics(len(tests), result.Partition, result.Findings)
	result.ExecutionTimeSec = time.Since(start).Seconds()

	s.attachGitInfo(result, projectPath)
	s.saveHistory(result, projectPath)

	s.logger.Info().
		Int("findings", result.Metrics.RedundancyFindings).
		Int("redundant_tests", result.Metrics.RedundantTests).
		Float64("reduction_pct", result.Metrics.ReductionPercentage).
		Msg("analysis complete")

	return result
}

// buildFeatures runs the fingerprint and semantic builders on parallel
// workers. Each produces a fully owned map; neither reads the other's data.
func (s *RunService) buildFeatures(tests []domain.TestRecord, cfg domain.EngineConfig) (map[string][]float64, map[string][]float64, error) {
	var (
		wg           sync.WaitGroup
		vectors      map[string][]float64
		fingerprints map[string][]float64
		vecErr       error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		fingerprints = fingerprint.NewBuilder(cfg).Build(tests)
	}()
	go func() {
		defer wg.Done()
		docs, err := semantic.BuildDocuments(tests)
		if err != nil {
			vecErr = err
			return
		}
		vectors = semantic.Vectorize(docs)
	}()
	wg.Wait()

	if vecErr != nil {
		return nil, nil, vecErr
	}
	return vectors, fingerprints, nil
}

// logFingerprintDiagnostics samples pairwise fingerprint agreement. The
// analyzer never consumes fingerprints; this is operator-facing signal only.
func (s *RunService) logFingerprintDiagnostics(tests []domain.TestRecord, fingerprints map[string][]float64) {
	if len(tests) < 2 {
		return
	}
	const samplePairs = 10
	var sum float64
	pairs := 0
	for i := 0; i < len(tests) && pairs < samplePairs; i++ {
		for j := i + 1; j < len(tests) && pairs < samplePairs; j++ {
			sum += fingerprint.Similarity(fingerprints[tests[i].TestID], fingerprints[tests[j].TestID])
			pairs++
		}
	}
	s.logger.Debug().
		Int("sampled_pairs", pairs).
		Float64("mean_fingerprint_similarity", sum/float64(pairs)).
		Msg("coverage fingerprints built")
}

func (s *RunService) attachGitInfo(result *domain.RunResult, projectPath string) {
	if s.gitInfo == nil || projectPath == "" {
		return
	}
	if hash, err := s.gitInfo.CommitHash(projectPath); err == nil {
		result.CommitHash = hash
	}
}

// saveHistory appends the run's metrics to the project history, best-effort.
func (s *RunService) saveHistory(result *domain.RunResult, projectPath string) {
	if s.history == nil || projectPath == "" {
		return
	}
	entry := domain.RunEntry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		CommitHash: result.CommitHash,
		RunID:      result.RunID,
		Metrics:    result.Metrics,
	}
	if err := s.history.Save(projectPath, entry); err != nil {
		s.logger.Warn().Err(err).Msg("saving run history")
	}
}

// checkpoint surfaces cancellation between stages; mid-stage work always
// runs to completion so no partial outputs escape.
func checkpoint(ctx context.Context) error {
	if ctx.Err() != nil {
		return domain.ErrCancelled
	}
	return nil
}
