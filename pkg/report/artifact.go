package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/osa-formcheck/pkg/scenario"
)

// ArtifactWriter handles writing run artifacts
type ArtifactWriter struct {
	outputDir string
}

// NewArtifactWriter creates a new artifact writer
func NewArtifactWriter(outputDir string) *ArtifactWriter {
	return &ArtifactWriter{
		outputDir: outputDir,
	}
}

// WriteAll writes the JSON result and the markdown summary
func (w *ArtifactWriter) WriteAll(result *scenario.Result) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := w.WriteResultJSON(result); err != nil {
		return err
	}

	if err := w.WriteSummaryMarkdown(result); err != nil {
		return err
	}

	return nil
}

// WriteResultJSON writes the full run result as JSON
func (w *ArtifactWriter) WriteResultJSON(result *scenario.Result) error {
	path := filepath.Join(w.outputDir, "result.json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write result JSON: %w", writeErr)
	}

	return nil
}

// WriteSummaryMarkdown writes a human-readable markdown summary
func (w *ArtifactWriter) WriteSummaryMarkdown(result *scenario.Result) error {
	path := filepath.Join(w.outputDir, "summary.md")

	if writeErr := os.WriteFile(path, []byte(SummaryMarkdown(result)), 0600); writeErr != nil {
		return fmt.Errorf("failed to write summary markdown: %w", writeErr)
	}

	return nil
}

// SummaryMarkdown renders result as markdown
func SummaryMarkdown(result *scenario.Result) string {
	var md strings.Builder

	md.WriteString("# Form Check Summary\n\n")
	md.WriteString(fmt.Sprintf("**Scenario:** %s\n\n", result.Scenario))
	md.WriteString(fmt.Sprintf("**URL:** %s\n\n", result.URL))
	if result.Driver != "" {
		md.WriteString(fmt.Sprintf("**Driver:** %s\n\n", result.Driver))
	}
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", result.RunID))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", result.StartedAt.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", result.Duration().Round(time.Millisecond)))

	md.WriteString("## Result\n\n")
	switch {
	case result.Interrupted:
		md.WriteString("⚠️ **Interrupted**\n\n")
	case result.Success():
		md.WriteString("✅ **Success**\n\n")
	default:
		md.WriteString("❌ **Failed**\n\n")
	}
	md.WriteString(fmt.Sprintf("%d passed, %d failed\n\n", result.Tally.Passed, result.Tally.Failed))

	if len(result.Checks) > 0 {
		md.WriteString("## Checks\n\n")
		md.WriteString("| Check | Input | Expected | Actual | Status |\n")
		md.WriteString("|---|---|---|---|---|\n")
		for _, c := range result.Checks {
			status := "✅"
			switch {
			case c.Skipped:
				status = "skipped"
			case !c.Passed:
				status = "❌"
			}
			md.WriteString(fmt.Sprintf("| %s | `%s` | `%s` | `%s` | %s |\n",
				c.Name, c.Input, c.Expected, c.Actual, status))
		}
		md.WriteString("\n")

		for _, c := range result.Checks {
			if c.Error != "" {
				md.WriteString(fmt.Sprintf("- **%s:** %s\n", c.Name, c.Error))
			}
		}
	}

	if len(result.Notes) > 0 {
		md.WriteString("\n## Notes\n\n")
		for _, n := range result.Notes {
			md.WriteString(fmt.Sprintf("- %s\n", n))
		}
	}

	if len(result.Screenshots) > 0 {
		md.WriteString("\n## Screenshots\n\n")
		for _, s := range result.Screenshots {
			md.WriteString(fmt.Sprintf("- `%s`\n", s))
		}
	}

	return md.String()
}
