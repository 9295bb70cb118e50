package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suykerbuyk/physics-lens/internal/physics"
)

func TestToIssues_SeverityPerLayer(t *testing.T) {
	r := Check(physics.Financial, Observed{
		Behavioral: ObservedBehavioral{Sync: Ptr(physics.Optimistic)},
		Animation:  ObservedAnimation{DurationMs: Ptr(100)},
		Material:   ObservedMaterial{Surface: Ptr("glass")},
	})

	issues := ToIssues(r)
	require.Len(t, issues, 3)
	assert.Equal(t, SeverityError, issues[0].Severity)
	assert.Equal(t, "behavioral-mismatch", issues[0].Code)
	assert.Contains(t, issues[0].Message, "sync should be pessimistic, got optimistic")
	assert.Equal(t, SeverityWarning, issues[1].Severity)
	assert.Equal(t, "animation-mismatch", issues[1].Code)
	assert.Equal(t, SeverityInfo, issues[2].Severity)
	assert.Equal(t, "material-mismatch", issues[2].Code)
}

func TestToIssues_SkipsLayerWithoutReason(t *testing.T) {
	r := Baseline(physics.Standard)
	r.Animation.Compliant = false
	assert.Empty(t, ToIssues(r))
	assert.False(t, IsFullyCompliant(r))
}

func TestToIssues_OnlyFailingLayers(t *testing.T) {
	r := Check(physics.Local, Observed{
		Material: ObservedMaterial{Shadow: Ptr("medium")},
	})
	issues := ToIssues(r)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
}
