package domain

import "fmt"

// Algorithm selects the clustering collaborator's algorithm.
type Algorithm string

const (
	AlgorithmKMeans       Algorithm = "kmeans"
	AlgorithmDBSCAN       Algorithm = "dbscan"
	AlgorithmHierarchical Algorithm = "hierarchical"
)

// ValidAlgorithms enumerates all recognized clustering algorithms.
var ValidAlgorithms = []Algorithm{
	AlgorithmKMeans,
	AlgorithmDBSCAN,
	AlgorithmHierarchical,
}

// Output formats for rendered findings.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatHTML     = "html"
)

// ValidFormats enumerates all recognized output formats.
var ValidFormats = []string{FormatMarkdown, FormatJSON, FormatYAML, FormatHTML}

// Hierarchical linkage strategies accepted by the collaborator.
var ValidLinkages = []string{"ward", "complete", "average", "single"}

// EngineConfig is the full configuration surface of a run. The zero value is
// not usable; start from DefaultEngineConfig.
type EngineConfig struct {
	Algorithm      Algorithm `yaml:"algorithm"        json:"algorithm"`
	Threshold      float64   `yaml:"threshold"        json:"threshold"`
	OutputFormat   string    `yaml:"output_format"    json:"output_format"`
	MaxClusters    int       `yaml:"max_clusters"     json:"max_clusters"`
	MinClusterSize int       `yaml:"min_cluster_size" json:"min_cluster_size"`

	UseDimensionalityReduction bool `yaml:"use_dimensionality_reduction" json:"use_dimensionality_reduction"`
	ReducedDimensions          int  `yaml:"reduced_dimensions"           json:"reduced_dimensions"`

	TimeoutSec int `yaml:"timeout" json:"timeout"`

	DBSCANEps        *float64 `yaml:"dbscan_eps"         json:"dbscan_eps,omitempty"`
	DBSCANMinSamples int      `yaml:"dbscan_min_samples" json:"dbscan_min_samples"`

	HierarchicalNClusters *int   `yaml:"hierarchical_n_clusters" json:"hierarchical_n_clusters,omitempty"`
	HierarchicalLinkage   string `yaml:"hierarchical_linkage"    json:"hierarchical_linkage"`

	ExcludeSharedCoverage bool `yaml:"exclude_shared_coverage" json:"exclude_shared_coverage"`
	UseIDFWeighting       bool `yaml:"use_idf_weighting"       json:"use_idf_weighting"`

	Debug bool `yaml:"debug" json:"debug"`
}

// DefaultEngineConfig returns the documented defaults. The default algorithm
// is deliberately user-facing: callers pass it in, the engine does not pick
// between the two defaults the original tooling disagreed on.
func DefaultEngineConfig(algorithm Algorithm) EngineConfig {
	return EngineConfig{
		Algorithm:             algorithm,
		Threshold:             0.85,
		OutputFormat:          FormatMarkdown,
		MaxClusters:           50,
		MinClusterSize:        2,
		TimeoutSec:            300,
		DBSCANMinSamples:      3,
		HierarchicalLinkage:   "ward",
		ExcludeSharedCoverage: true,
		UseIDFWeighting:       true,
	}
}

// Validate checks every field and returns a ConfigError for the first
// out-of-range value. A run never starts with an invalid config.
func (c EngineConfig) Validate() error {
	validAlg := false
	for _, a := range ValidAlgorithms {
		if c.Algorithm == a {
			validAlg = true
			break
		}
	}
	if !validAlg {
		return &ConfigError{Field: "algorithm", Reason: fmt.Sprintf("unknown algorithm %q (valid: kmeans, dbscan, hierarchical)", c.Algorithm)}
	}

	if c.Threshold < 0 || c.Threshold > 1 {
		return &ConfigError{Field: "threshold", Reason: fmt.Sprintf("%v is outside [0,1]", c.Threshold)}
	}

	validFmt := false
	for _, f := range ValidFormats {
		if c.OutputFormat == f {
			validFmt = true
			break
		}
	}
	if !validFmt {
		return &ConfigError{Field: "output_format", Reason: fmt.Sprintf("unknown format %q (valid: markdown, json, yaml, html)", c.OutputFormat)}
	}

	if c.MaxClusters < 1 {
		return &ConfigError{Field: "max_clusters", Reason: fmt.Sprintf("%d must be at least 1", c.MaxClusters)}
	}
	if c.MinClusterSize < 2 {
		return &ConfigError{Field: "min_cluster_size", Reason: fmt.Sprintf("%d must be at least 2", c.MinClusterSize)}
	}
	if c.UseDimensionalityReduction && c.ReducedDimensions < 1 {
		return &ConfigError{Field: "reduced_dimensions", Reason: fmt.Sprintf("%d must be at least 1 when reduction is enabled", c.ReducedDimensions)}
	}
	if c.TimeoutSec < 1 {
		return &ConfigError{Field: "timeout", Reason: fmt.Sprintf("%d must be at least 1 second", c.TimeoutSec)}
	}
	if c.DBSCANEps != nil && *c.DBSCANEps <= 0 {
		return &ConfigError{Field: "dbscan_eps", Reason: fmt.Sprintf("%v must be positive", *c.DBSCANEps)}
	}
	if c.DBSCANMinSamples < 1 {
		return &ConfigError{Field: "dbscan_min_samples", Reason: fmt.Sprintf("%d must be at least 1", c.DBSCANMinSamples)}
	}
	if c.HierarchicalNClusters != nil && *c.HierarchicalNClusters < 1 {
		return &ConfigError{Field: "hierarchical_n_clusters", Reason: fmt.Sprintf("%d must be at least 1", *c.HierarchicalNClusters)}
	}

	validLinkage := false
	for _, l := range ValidLinkages {
		if c.HierarchicalLinkage == l {
			validLinkage = true
			break
		}
	}
	if !validLinkage {
		return &ConfigError{Field: "hierarchical_linkage", Reason: fmt.Sprintf("unknown linkage %q (valid: ward, complete, average, single)", c.HierarchicalLinkage)}
	}

	return nil
}
