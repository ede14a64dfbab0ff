// Package cluster dispatches vectors to the clustering collaborator and
// validates the partition it returns.
//
// The collaborator is a capability, not an implementation: anything that
// honors the request/response contract (in-process library, subprocess,
// RPC) plugs in behind the domain.Clusterer port.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reductor/reductor/internal/domain"
)

// Dispatcher performs the single clustering call of a run.
type Dispatcher struct {
	clusterer domain.Clusterer
	timeout   time.Duration
}

// NewDispatcher creates a Dispatcher guarding the collaborator call with the
// configured timeout.
func NewDispatcher(clusterer domain.Clusterer, cfg domain.EngineConfig) *Dispatcher {
	return &Dispatcher{
		clusterer: clusterer,
		timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
	}
}

// Dispatch sends the vectors out and returns the validated partition.
func (d *Dispatcher) Dispatch(ctx context.Context, records []domain.FeatureRecord, cfg domain.EngineConfig) (*domain.Partition, error) {
	req := buildRequest(records, cfg)

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resp, err := d.clusterer.Cluster(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &domain.ClusteringError{Cause: "timeout", Err: err}
		}
		var cerr *domain.ClusteringError
		if errors.As(err, &cerr) {
			return nil, err
		}
		return nil, &domain.ClusteringError{Cause: "collaborator call failed", Err: err}
	}

	if err := validate(resp, req.Vectors); err != nil {
		return nil, err
	}

	p := domain.NewPartition(resp.Clusters)
	p.Scores = resp.Scores
	return p, nil
}

// buildRequest assembles the wire payload: all three parameter blocks are
// always present, the collaborator reads the one matching the selector.
func buildRequest(records []domain.FeatureRecord, cfg domain.EngineConfig) domain.ClusterRequest {
	vectors := make([]domain.VectorEntry, 0, len(records))
	for _, r := range records {
		vectors = append(vectors, domain.VectorEntry{TestID: r.TestID, Vector: r.Vector})
	}
	return domain.ClusterRequest{
		Vectors:   vectors,
		Algorithm: cfg.Algorithm,
		Params: domain.ClusterParams{
			KMeans: domain.KMeansParams{
				MinClusterSize: cfg.MinClusterSize,
				MaxClusters:    cfg.MaxClusters,
			},
			DBSCAN: domain.DBSCANParams{
				Eps:        cfg.DBSCANEps,
				MinSamples: cfg.DBSCANMinSamples,
			},
			Hierarchical: domain.HierarchicalParams{
				NClusters: cfg.HierarchicalNClusters,
				Linkage:   cfg.HierarchicalLinkage,
			},
		},
		Debug: cfg.Debug,
	}
}

// validate checks the partition against the inputs: every test appears in
// exactly one cluster, no unknown tests, cluster IDs are non-negative except
// the noise bucket.
func validate(resp *domain.ClusterResponse, vectors []domain.VectorEntry) error {
	if resp == nil || resp.Clusters == nil {
		return &domain.ClusterConsistencyError{Detail: "collaborator returned no clusters"}
	}

	expected := make(map[string]struct{}, len(vectors))
	for _, v := range vectors {
		expected[v.TestID] = struct{}{}
	}

	seen := make(map[string]int, len(expected))
	for id, members := range resp.Clusters {
		if id < domain.NoiseClusterID {
			return &domain.ClusterConsistencyError{Detail: fmt.Sprintf("invalid cluster id %d", id)}
		}
		for _, testID := range members {
			if _, ok := expected[testID]; !ok {
				return &domain.ClusterConsistencyError{Detail: fmt.Sprintf("unknown test %q in cluster %d", testID, id)}
			}
			seen[testID]++
			if seen[testID] > 1 {
				return &domain.ClusterConsistencyError{Detail: fmt.Sprintf("test %q assigned to more than one cluster", testID)}
			}
		}
	}

	if len(seen) != len(expected) {
		for _, v := range vectors {
			if _, ok := seen[v.TestID]; !ok {
				return &domain.ClusterConsistencyError{Detail: fmt.Sprintf("test %q missing from partition", v.TestID)}
			}
		}
	}

	return nil
}
