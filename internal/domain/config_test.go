package domain_test

import (
	"testing"

	"github.com/reductor/reductor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfig_IsValid(t *testing.T) {
	for _, alg := range domain.ValidAlgorithms {
		cfg := domain.DefaultEngineConfig(alg)
		assert.NoError(t, cfg.Validate(), "algorithm %s", alg)
	}
}

func TestDefaultEngineConfig_DocumentedDefaults(t *testing.T) {
	cfg := domain.DefaultEngineConfig(domain.AlgorithmDBSCAN)

	assert.Equal(t, 0.85, cfg.Threshold)
	assert.Equal(t, 50, cfg.MaxClusters)
	assert.Equal(t, 2, cfg.MinClusterSize)
	assert.Equal(t, 300, cfg.TimeoutSec)
	assert.Equal(t, 3, cfg.DBSCANMinSamples)
	assert.Equal(t, "ward", cfg.HierarchicalLinkage)
	assert.True(t, cfg.ExcludeSharedCoverage)
	assert.True(t, cfg.UseIDFWeighting)
	assert.Nil(t, cfg.DBSCANEps)
	assert.Nil(t, cfg.HierarchicalNClusters)
}

func TestEngineConfig_Validate(t *testing.T) {
	mutate := func(fn func(*domain.EngineConfig)) domain.EngineConfig {
		cfg := domain.DefaultEngineConfig(domain.AlgorithmKMeans)
		fn(&cfg)
		return cfg
	}

	cases := []struct {
		name  string
		cfg   domain.EngineConfig
		field string
	}{
		{"unknown algorithm", mutate(func(c *domain.EngineConfig) { c.Algorithm = "spectral" }), "algorithm"},
		{"threshold above one", mutate(func(c *domain.EngineConfig) { c.Threshold = 1.5 }), "threshold"},
		{"negative threshold", mutate(func(c *domain.EngineConfig) { c.Threshold = -0.1 }), "threshold"},
		{"unknown format", mutate(func(c *domain.EngineConfig) { c.OutputFormat = "pdf" }), "output_format"},
		{"zero max clusters", mutate(func(c *domain.EngineConfig) { c.MaxClusters = 0 }), "max_clusters"},
		{"min cluster size one", mutate(func(c *domain.EngineConfig) { c.MinClusterSize = 1 }), "min_cluster_size"},
		{"reduction without dims", mutate(func(c *domain.EngineConfig) { c.UseDimensionalityReduction = true }), "reduced_dimensions"},
		{"zero timeout", mutate(func(c *domain.EngineConfig) { c.TimeoutSec = 0 }), "timeout"},
		{"negative eps", mutate(func(c *domain.EngineConfig) { eps := -1.0; c.DBSCANEps = &eps }), "dbscan_eps"},
		{"zero min samples", mutate(func(c *domain.EngineConfig) { c.DBSCANMinSamples = 0 }), "dbscan_min_samples"},
		{"zero n clusters", mutate(func(c *domain.EngineConfig) { n := 0; c.HierarchicalNClusters = &n }), "hierarchical_n_clusters"},
		{"unknown linkage", mutate(func(c *domain.EngineConfig) { c.HierarchicalLinkage = "median" }), "hierarchical_linkage"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			var cerr *domain.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
}
