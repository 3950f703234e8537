//go:build browser

package browser_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/osa-formcheck/pkg/browser"
	"github.com/entrhq/osa-formcheck/pkg/fixture"
	"github.com/entrhq/osa-formcheck/pkg/report"
	"github.com/entrhq/osa-formcheck/pkg/scenario"
)

// Run with: go test -tags browser ./pkg/browser/...
func TestOSAScenarioAgainstFixture(t *testing.T) {
	srv, err := fixture.Start("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Close(ctx)
	})

	manager := browser.NewSessionManager()
	require.NoError(t, manager.Initialize(true))
	t.Cleanup(func() { _ = manager.Shutdown() })

	session, err := manager.StartSession("osa", browser.SessionOptions{Headless: true})
	require.NoError(t, err)

	dir := t.TempDir()
	var out bytes.Buffer
	runner, err := scenario.NewRunner(session, report.New(&out, report.LevelNormal), scenario.Options{
		RunID:   "integration",
		BaseURL: srv.URL,
		Screenshots: map[string]string{
			scenario.ShotStep2: filepath.Join(dir, "step2.png"),
			scenario.ShotStep3: filepath.Join(dir, "step3.png"),
			scenario.ShotFinal: filepath.Join(dir, "final.png"),
		},
	})
	require.NoError(t, err)

	result := runner.Run(context.Background(), scenario.OSA())

	assert.Equal(t, scenario.Tally{Passed: 4, Failed: 0}, result.Tally, out.String())
	assert.Empty(t, result.Notes, out.String())
	assert.Len(t, result.Screenshots, 3)
	assert.FileExists(t, filepath.Join(dir, "step3.png"))
	assert.True(t, result.Success())
}
