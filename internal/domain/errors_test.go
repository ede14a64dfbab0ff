package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/reductor/reductor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreError_UnwrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := &domain.StoreError{RunID: "run-1", Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "run-1")
	assert.Contains(t, err.Error(), "disk full")
}

func TestClusteringError_Message(t *testing.T) {
	err := &domain.ClusteringError{
		Cause:    "collaborator exited abnormally",
		Stderr:   "ValueError",
		ExitCode: 2,
		Err:      errors.New("exit status 2"),
	}

	assert.Contains(t, err.Error(), "collaborator exited abnormally")
	assert.Contains(t, err.Error(), "ValueError")
}

func TestVectorizationError_CarriesTestID(t *testing.T) {
	var verr *domain.VectorizationError
	err := fmt.Errorf("stage failed: %w", &domain.VectorizationError{TestID: "T::x", Reason: "no source"})

	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "T::x", verr.TestID)
}

func TestConfigError_Message(t *testing.T) {
	err := &domain.ConfigError{Field: "threshold", Reason: "2 is outside [0,1]"}

	assert.Contains(t, err.Error(), "threshold")
	assert.Contains(t, err.Error(), "[0,1]")
}

func TestFingerprintDimensionMismatch_Message(t *testing.T) {
	err := &domain.FingerprintDimensionMismatch{Have: 10, Want: domain.FingerprintSize}

	assert.Contains(t, err.Error(), "have 10")
	assert.Contains(t, err.Error(), "want 256")
}
