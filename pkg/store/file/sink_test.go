package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
)

func bundle(t *testing.T) *domain.EvidenceBundle {
	b := domain.NewEvidenceBundle()
	require.NoError(t, b.Add("root-no-access-keys", domain.Report{
		Control: "CC6.3",
		Results: []domain.Finding{domain.CheckLevelFinding(true, domain.Evidence{"accountAccessKeysPresent": 0})},
		Summary: domain.Summary{"totalKeys": 0, "nonCompliant": 0},
		Passed:  true,
	}))
	require.NoError(t, b.Add("iam-mfa-enabled", domain.Report{
		Control: "CC6.2",
		Results: []domain.Finding{domain.NewFinding("alice", true, nil)},
		Summary: domain.Summary{"totalUsers": 1, "nonCompliant": 0},
		Passed:  true,
	}))
	return b
}

func TestSink_Persist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	err := NewSink(dir).Persist(context.Background(), "service", bundle(t))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "service-evidence.json"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "{\n  \"root-no-access-keys\": {\n    \"control\": \"CC6.3\""))
	assert.Less(t, strings.Index(string(data), "root-no-access-keys"), strings.Index(string(data), "iam-mfa-enabled"))
	assert.Contains(t, string(data), `"resourceId": null`)

	var decoded map[string]domain.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
	assert.True(t, decoded["iam-mfa-enabled"].Passed)

	_, err = os.Stat(filepath.Join(dir, "service-evidence.json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestSink_Persist_Overwrites(t *testing.T) {
	dir := t.TempDir()
	sink := NewSink(dir)
	ctx := context.Background()

	require.NoError(t, sink.Persist(ctx, "billing", bundle(t)))
	require.NoError(t, sink.Persist(ctx, "billing", domain.NewEvidenceBundle()))

	data, err := os.ReadFile(Path(dir, "billing"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
