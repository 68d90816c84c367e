package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/services/orchestrator"
)

func TestReporter_Handle(t *testing.T) {
	bundle := domain.NewEvidenceBundle()
	require.NoError(t, bundle.Add("iam-mfa-enabled", domain.Report{
		Control: "CC6.2",
		Results: []domain.Finding{
			domain.NewFinding("alice", true, nil),
			domain.NewFinding("bob", false, nil),
		},
	}))
	require.NoError(t, bundle.Add("cost-explorer-enabled", domain.Report{
		Control: "SOC2 CC4.1",
		Results: []domain.Finding{},
		Note:    "Cost Explorer is not enabled for this account",
	}))

	result := orchestrator.GroupResult{
		Group:  "service",
		Bundle: bundle,
		Checks: []orchestrator.CheckStatus{
			{Name: "iam-mfa-enabled", State: orchestrator.StateReported, Outcome: orchestrator.StateEvaluating},
			{Name: "cost-explorer-enabled", State: orchestrator.StateReported, Outcome: orchestrator.StateSkipped},
			{Name: "s3-no-public-buckets", State: orchestrator.StateFailed, Err: errors.New("throttled")},
			{Name: "rds-backups-enabled", State: orchestrator.StatePending},
		},
		Err: errors.New("group service: check s3-no-public-buckets: throttled"),
	}

	var out bytes.Buffer
	require.NoError(t, NewReporter(&out).Handle(result))

	text := out.String()
	assert.Contains(t, text, "=== service (failed) ===")
	assert.Contains(t, text, "Passed: 0/4")
	assert.Contains(t, text, "fail (1)")
	assert.Contains(t, text, "skipped")
	assert.Contains(t, text, "not run")
	assert.Contains(t, text, "throttled")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
