// Package config loads engine configuration overrides from .reductor.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/reductor/reductor/internal/domain"
)

const fileName = ".reductor.yaml"

// YAMLLoader reads .reductor.yaml and overlays it onto a base config.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// fileConfig mirrors EngineConfig with pointer fields so absent keys are
// distinguishable from zero values.
type fileConfig struct {
	Algorithm      *string  `yaml:"algorithm"`
	Threshold      *float64 `yaml:"threshold"`
	OutputFormat   *string  `yaml:"output_format"`
	MaxClusters    *int     `yaml:"max_clusters"`
	MinClusterSize *int     `yaml:"min_cluster_size"`

	UseDimensionalityReduction *bool `yaml:"use_dimensionality_reduction"`
	ReducedDimensions          *int  `yaml:"reduced_dimensions"`

	Timeout *int `yaml:"timeout"`

	DBSCANEps        *float64 `yaml:"dbscan_eps"`
	DBSCANMinSamples *int     `yaml:"dbscan_min_samples"`

	HierarchicalNClusters *int    `yaml:"hierarchical_n_clusters"`
	HierarchicalLinkage   *string `yaml:"hierarchical_linkage"`

	ExcludeSharedCoverage *bool `yaml:"exclude_shared_coverage"`
	UseIDFWeighting       *bool `yaml:"use_idf_weighting"`
}

// Load overlays the project's .reductor.yaml onto base. A missing file
// returns base unchanged; an invalid merged config fails with ConfigError.
func (l *YAMLLoader) Load(projectPath string, base domain.EngineConfig) (domain.EngineConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return domain.EngineConfig{}, err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return domain.EngineConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	cfg := merge(base, fc)
	if err := cfg.Validate(); err != nil {
		return domain.EngineConfig{}, err
	}
	return cfg, nil
}

// merge overlays explicit file values on top of the base config.
func merge(base domain.EngineConfig, fc fileConfig) domain.EngineConfig {
	cfg := base

	if fc.Algorithm != nil {
		cfg.Algorithm = domain.Algorithm(*fc.Algorithm)
	}
	if fc.Threshold != nil {
		cfg.Threshold = *fc.Threshold
	}
	if fc.OutputFormat != nil {
		cfg.OutputFormat = *fc.OutputFormat
	}
	if fc.MaxClusters != nil {
		cfg.MaxClusters = *fc.MaxClusters
	}
	if fc.MinClusterSize != nil {
		cfg.MinClusterSize = *fc.MinClusterSize
	}
	if fc.UseDimensionalityReduction != nil {
		cfg.UseDimensionalityReduction = *fc.UseDimensionalityReduction
	}
	if fc.ReducedDimensions != nil {
		cfg.ReducedDimensions = *fc.ReducedDimensions
	}
	if fc.Timeout != nil {
		cfg.TimeoutSec = *fc.Timeout
	}
	if fc.DBSCANEps != nil {
		cfg.DBSCANEps = fc.DBSCANEps
	}
	if fc.DBSCANMinSamples != nil {
		cfg.DBSCANMinSamples = *fc.DBSCANMinSamples
	}
	if fc.HierarchicalNClusters != nil {
		cfg.HierarchicalNClusters = fc.HierarchicalNClusters
	}
	if fc.HierarchicalLinkage != nil {
		cfg.HierarchicalLinkage = *fc.HierarchicalLinkage
	}
	if fc.ExcludeSharedCoverage != nil {
		cfg.ExcludeSharedCoverage = *fc.ExcludeSharedCoverage
	}
	if fc.UseIDFWeighting != nil {
		cfg.UseIDFWeighting = *fc.UseIDFWeighting
	}
	return cfg
}
