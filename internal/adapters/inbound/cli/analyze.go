package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reductor/reductor/internal/adapters/outbound/clusterproc"
	configloader "github.com/reductor/reductor/internal/adapters/outbound/config"
	"github.com/reductor/reductor/internal/adapters/outbound/gitinfo"
	"github.com/reductor/reductor/internal/adapters/outbound/history"
	"github.com/reductor/reductor/internal/adapters/outbound/report"
	"github.com/reductor/reductor/internal/adapters/outbound/store"
	"github.com/reductor/reductor/internal/adapters/outbound/tui"
	"github.com/reductor/reductor/internal/application"
	"github.com/reductor/reductor/internal/domain"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		dbPath      string
		projectPath string
		clusterCmd  string
		algorithm   string
		format      string
		threshold   float64
		timeoutSec  int
		maxClusters int
		minCluster  int
		minSamples  int
		eps         float64
		nClusters   int
		linkage     string
		keepShared  bool
		noIDF       bool
		logLevel    string
		ciMode      bool
		failOn      string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <run-id>",
		Short: "Analyze a test run for redundant tests",
		Long:  "Read a test run from the store, build coverage fingerprints and semantic vectors, cluster, and report which tests add nothing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := args[0]

			logger := newLogger(cmd.ErrOrStderr(), logLevel)

			cfg := domain.DefaultEngineConfig(domain.Algorithm(algorithm))
			cfg.Threshold = threshold
			cfg.OutputFormat = format
			cfg.TimeoutSec = timeoutSec
			cfg.MaxClusters = maxClusters
			cfg.MinClusterSize = minCluster
			cfg.DBSCANMinSamples = minSamples
			cfg.HierarchicalLinkage = linkage
			cfg.ExcludeSharedCoverage = !keepShared
			cfg.UseIDFWeighting = !noIDF
			cfg.Debug = debug
			if cmd.Flags().Changed("eps") {
				cfg.DBSCANEps = &eps
			}
			if cmd.Flags().Changed("n-clusters") {
				cfg.HierarchicalNClusters = &nClusters
			}

			cfg, err := configloader.New().Load(projectPath, cfg)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			reader, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer reader.Close()

			svc := application.NewRunService(
				reader,
				clusterproc.New(strings.Fields(clusterCmd)),
				gitinfo.New(),
				history.New(),
				logger,
			)

			result := svc.AnalyzeRun(cmd.Context(), runID, projectPath, cfg)

			if cmd.Flags().Changed("format") || !result.Success {
				renderer, err := report.For(cfg.OutputFormat)
				if err != nil {
					return err
				}
				out, err := renderer.Render(result)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderSummary(result))
			}

			if !result.Success {
				return fmt.Errorf("analysis failed: %s", strings.Join(result.Errors, "; "))
			}

			if ciMode {
				if n := countFindingsAtOrAbove(result.Findings, failOn); n > 0 {
					return fmt.Errorf("found %d redundancy findings at or above %s priority", n, failOn)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", ".reductor/runs.db", "Path to the test-run store database")
	cmd.Flags().StringVar(&projectPath, "project", ".", "Project root for config, git info, and history")
	cmd.Flags().StringVar(&clusterCmd, "clusterer", "", "Clustering collaborator command, e.g. 'python3 cluster.py'")
	cmd.Flags().StringVar(&algorithm, "algorithm", string(domain.AlgorithmDBSCAN), "Clustering algorithm: kmeans, dbscan, hierarchical")
	cmd.Flags().StringVar(&format, "format", domain.FormatMarkdown, "Output format: markdown, json, yaml, html (a terminal summary is printed when unset)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.85, "Documented similarity threshold")
	cmd.Flags().IntVar(&timeoutSec, "timeout", 300, "Clustering collaborator timeout in seconds")
	cmd.Flags().IntVar(&maxClusters, "max-clusters", 50, "Upper bound on clusters")
	cmd.Flags().IntVar(&minCluster, "min-cluster-size", 2, "Smallest cluster worth analyzing")
	cmd.Flags().IntVar(&minSamples, "min-samples", 3, "DBSCAN min_samples")
	cmd.Flags().Float64Var(&eps, "eps", 0, "DBSCAN eps (collaborator estimates when unset)")
	cmd.Flags().IntVar(&nClusters, "n-clusters", 0, "Hierarchical cluster count (collaborator cuts when unset)")
	cmd.Flags().StringVar(&linkage, "linkage", "ward", "Hierarchical linkage: ward, complete, average, single")
	cmd.Flags().BoolVar(&keepShared, "keep-shared-coverage", false, "Keep lines covered by most of the suite")
	cmd.Flags().BoolVar(&noIDF, "no-idf", false, "Disable IDF weighting of coverage lines")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 on findings at or above --fail-on")
	cmd.Flags().StringVar(&failOn, "fail-on", domain.PriorityHigh, "Priority that fails CI mode")
	cmd.Flags().BoolVar(&debug, "debug", false, "Forward debug flag to the clustering collaborator")

	return cmd
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func countFindingsAtOrAbove(findings []domain.Finding, priority string) int {
	limit := domain.PriorityRank(priority)
	n := 0
	for _, f := range findings {
		if domain.PriorityRank(f.Priority) <= limit {
			n++
		}
	}
	return n
}
