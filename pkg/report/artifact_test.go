package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/osa-formcheck/pkg/scenario"
)

func TestArtifactWriter_WriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "artifacts")
	w := NewArtifactWriter(dir)

	require.NoError(t, w.WriteAll(sampleResult()))

	data, err := os.ReadFile(filepath.Join(dir, "result.json"))
	require.NoError(t, err)

	var decoded scenario.Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "7d1c", decoded.RunID)
	assert.Equal(t, scenario.Tally{Passed: 1, Failed: 1}, decoded.Tally)
	assert.Len(t, decoded.Checks, 3)

	md, err := os.ReadFile(filepath.Join(dir, "summary.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Form Check Summary")
}

func TestSummaryMarkdown(t *testing.T) {
	md := SummaryMarkdown(sampleResult())

	assert.Contains(t, md, "**Scenario:** osa-request-form")
	assert.Contains(t, md, "❌ **Failed**")
	assert.Contains(t, md, "1 passed, 1 failed")
	assert.Contains(t, md, "| billing-phone | `4035551234` | `(403) 555-1234` | `(403) 555-1234` | ✅ |")
	assert.Contains(t, md, "| billing-postal-code | `` | `T2P 1A1` | `` | skipped |")
	assert.Contains(t, md, "- **event-contact-phone:** timeout 5000ms exceeded")
	assert.Contains(t, md, "- Could not proceed to step 3: timeout")
	assert.Contains(t, md, "- `/tmp/osa-form-test-final.png`")
	assert.Contains(t, md, "**Duration:** 14s")
}

func TestSummaryMarkdown_Success(t *testing.T) {
	result := &scenario.Result{Tally: scenario.Tally{Passed: 4}}
	md := SummaryMarkdown(result)

	assert.Contains(t, md, "✅ **Success**")
	assert.NotContains(t, md, "## Checks")
	assert.NotContains(t, md, "## Notes")
}
