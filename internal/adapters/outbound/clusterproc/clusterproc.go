// Package clusterproc invokes the external clustering collaborator as a
// subprocess exchanging JSON files. The wire contract is the request and
// response payload shapes; everything else about the collaborator is its
// own business.
package clusterproc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/reductor/reductor/internal/domain"
)

// ProcessClusterer implements domain.Clusterer by running an executable
// with two arguments: the request file path and the response file path.
type ProcessClusterer struct {
	command []string
	tempDir string
}

// New creates a ProcessClusterer. command is the argv prefix of the
// collaborator, e.g. ["python3", "cluster.py"].
func New(command []string) *ProcessClusterer {
	return &ProcessClusterer{command: command, tempDir: os.TempDir()}
}

// Cluster performs the single collaborator call: write request, run the
// process under the caller's context, parse the response. Temp payloads are
// removed on return.
func (p *ProcessClusterer) Cluster(ctx context.Context, req domain.ClusterRequest) (*domain.ClusterResponse, error) {
	if len(p.command) == 0 {
		return nil, &domain.ClusteringError{Cause: "no collaborator command configured"}
	}

	id := uuid.NewString()
	reqPath := filepath.Join(p.tempDir, "reductor-req-"+id+".json")
	respPath := filepath.Join(p.tempDir, "reductor-resp-"+id+".json")
	defer os.Remove(reqPath)
	defer os.Remove(respPath)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.ClusteringError{Cause: "encoding request", Err: err}
	}
	if err := os.WriteFile(reqPath, payload, 0644); err != nil {
		return nil, &domain.ClusteringError{Cause: "writing request payload", Err: err}
	}

	args := append(append([]string{}, p.command[1:]...), reqPath, respPath)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Once the context kills the collaborator, stop waiting for any child
	// processes it spawned that still hold the stderr pipe open.
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("collaborator interrupted: %w", ctx.Err())
		}
		cerr := &domain.ClusteringError{
			Cause:  "collaborator exited abnormally",
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cerr.ExitCode = exitErr.ExitCode()
		}
		return nil, cerr
	}

	data, err := os.ReadFile(respPath)
	if err != nil {
		return nil, &domain.ClusteringError{Cause: "collaborator produced no response", Err: err}
	}
	return parseResponse(data)
}

// parseResponse accepts both permitted cluster shapes: a plain member array
// per cluster, or an object with tests and an optional score.
func parseResponse(data []byte) (*domain.ClusterResponse, error) {
	if !gjson.ValidBytes(data) {
		return nil, &domain.ClusteringError{Cause: "response is not valid JSON"}
	}

	clustersNode := gjson.GetBytes(data, "clusters")
	if !clustersNode.Exists() || !clustersNode.IsObject() {
		return nil, &domain.ClusteringError{Cause: "response has no clusters object"}
	}

	resp := &domain.ClusterResponse{Clusters: make(map[int][]string)}
	var parseErr error

	clustersNode.ForEach(func(key, value gjson.Result) bool {
		id, err := strconv.Atoi(key.String())
		if err != nil {
			parseErr = &domain.ClusteringError{Cause: fmt.Sprintf("non-integer cluster id %q", key.String())}
			return false
		}

		var membersNode gjson.Result
		switch {
		case value.IsArray():
			membersNode = value
		case value.IsObject():
			membersNode = value.Get("tests")
			if score := value.Get("score"); score.Exists() {
				if resp.Scores == nil {
					resp.Scores = make(map[int]float64)
				}
				resp.Scores[id] = score.Float()
			}
		default:
			parseErr = &domain.ClusteringError{Cause: fmt.Sprintf("cluster %d has unsupported shape", id)}
			return false
		}

		members := make([]string, 0, len(membersNode.Array()))
		for _, m := range membersNode.Array() {
			members = append(members, m.String())
		}
		resp.Clusters[id] = members
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if meta := gjson.GetBytes(data, "metadata"); meta.IsObject() {
		resp.Metadata = make(map[string]string)
		meta.ForEach(func(key, value gjson.Result) bool {
			resp.Metadata[key.String()] = value.String()
			return true
		})
	}
	return resp, nil
}
