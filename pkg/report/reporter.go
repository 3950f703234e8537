// Package report prints scenario progress to the console and writes run
// artifacts to disk.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/osa-formcheck/pkg/scenario"
)

// Level represents the console verbosity level
type Level int

const (
	// LevelQuiet shows only failures, warnings and the final summary
	LevelQuiet Level = iota
	// LevelNormal shows step progress (default)
	LevelNormal
	// LevelVerbose adds per-check detail to the summary
	LevelVerbose
	// LevelDebug shows everything
	LevelDebug
)

// ParseLevel converts a verbosity name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "quiet":
		return LevelQuiet, nil
	case "", "normal":
		return LevelNormal, nil
	case "verbose":
		return LevelVerbose, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelNormal, fmt.Errorf("invalid verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", s)
	}
}

// Color palette, shared with the rest of the tooling.
var (
	mintGreen  = lipgloss.Color("#A8E6CF")
	salmonPink = lipgloss.Color("#FFB3BA")
	amber      = lipgloss.Color("#FFD580")
	skyBlue    = lipgloss.Color("#9AD1F5")
	mutedGray  = lipgloss.Color("#6B7280")
)

const ruleWidth = 60

// Reporter writes human readable progress. It implements scenario.Reporter.
type Reporter struct {
	level  Level
	writer io.Writer

	header  lipgloss.Style
	section lipgloss.Style
	pass    lipgloss.Style
	fail    lipgloss.Style
	warn    lipgloss.Style
	muted   lipgloss.Style
}

// New creates a reporter writing to w. Colors are used only when w is a
// terminal that supports them.
func New(w io.Writer, level Level) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		level:   level,
		writer:  w,
		header:  r.NewStyle().Bold(true),
		section: r.NewStyle().Foreground(skyBlue).Bold(true),
		pass:    r.NewStyle().Foreground(mintGreen).Bold(true),
		fail:    r.NewStyle().Foreground(salmonPink).Bold(true),
		warn:    r.NewStyle().Foreground(amber),
		muted:   r.NewStyle().Foreground(mutedGray),
	}
}

// NewStdout creates a reporter on standard output.
func NewStdout(level Level) *Reporter {
	return New(os.Stdout, level)
}

var _ scenario.Reporter = (*Reporter)(nil)

// Header prints a prominent header message
func (r *Reporter) Header(message string) {
	if r.level >= LevelNormal {
		rule := strings.Repeat("=", ruleWidth)
		fmt.Fprintln(r.writer, r.header.Render(rule))
		fmt.Fprintln(r.writer, r.header.Render(message))
		fmt.Fprintln(r.writer, r.header.Render(rule))
	}
}

// Section prints a step or test title
func (r *Reporter) Section(title string) {
	if r.level >= LevelNormal {
		fmt.Fprintln(r.writer)
		fmt.Fprintln(r.writer, r.section.Render(title))
	}
}

// Infof prints an indented progress message
func (r *Reporter) Infof(format string, args ...interface{}) {
	if r.level >= LevelNormal {
		fmt.Fprintf(r.writer, "  %s\n", fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning. Shown at every level.
func (r *Reporter) Warningf(format string, args ...interface{}) {
	fmt.Fprintln(r.writer, r.warn.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// Pass prints a passing check
func (r *Reporter) Pass(format string, args ...interface{}) {
	if r.level >= LevelNormal {
		fmt.Fprintf(r.writer, "  %s %s\n", r.pass.Render("[PASS]"), fmt.Sprintf(format, args...))
	}
}

// Fail prints a failing check. Shown at every level.
func (r *Reporter) Fail(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, "  %s %s\n", r.fail.Render("[FAIL]"), fmt.Sprintf(format, args...))
}

// Note prints an observation that does not affect the result
func (r *Reporter) Note(format string, args ...interface{}) {
	if r.level >= LevelNormal {
		fmt.Fprintf(r.writer, "  %s\n", r.muted.Render("Note: "+fmt.Sprintf(format, args...)))
	}
}

// Verbosef prints detailed information (only in verbose mode)
func (r *Reporter) Verbosef(format string, args ...interface{}) {
	if r.level >= LevelVerbose {
		fmt.Fprintf(r.writer, "  %s\n", r.muted.Render("→ "+fmt.Sprintf(format, args...)))
	}
}

// Debugf prints debug information (only in debug mode)
func (r *Reporter) Debugf(format string, args ...interface{}) {
	if r.level >= LevelDebug {
		fmt.Fprintf(r.writer, "%s\n", r.muted.Render("[DEBUG] "+fmt.Sprintf(format, args...)))
	}
}

// Errorf prints an error that stopped the run before it started
func (r *Reporter) Errorf(format string, args ...interface{}) {
	fmt.Fprintln(r.writer, r.fail.Render("Error: "+fmt.Sprintf(format, args...)))
}

// Summary prints the final tally
func (r *Reporter) Summary(result *scenario.Result) {
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, r.header.Render(rule))

	tally := fmt.Sprintf("RESULTS: %d passed, %d failed", result.Tally.Passed, result.Tally.Failed)
	if result.Success() {
		fmt.Fprintln(r.writer, r.pass.Render(tally))
	} else {
		fmt.Fprintln(r.writer, r.fail.Render(tally))
	}
	if result.Interrupted {
		fmt.Fprintln(r.writer, r.warn.Render("Run interrupted"))
	}

	if r.level >= LevelVerbose {
		r.printChecks(result)
		fmt.Fprintf(r.writer, "Duration: %s\n", result.Duration().Round(time.Millisecond))
	}

	fmt.Fprintln(r.writer, r.header.Render(rule))
}

func (r *Reporter) printChecks(result *scenario.Result) {
	for _, c := range result.Checks {
		var status string
		switch {
		case c.Skipped:
			status = r.muted.Render("[SKIP]")
		case c.Passed:
			status = r.pass.Render("[PASS]")
		default:
			status = r.fail.Render("[FAIL]")
		}

		fmt.Fprintf(r.writer, "  %s %s", status, c.Name)
		if !c.Skipped && c.Expected != "" {
			fmt.Fprintf(r.writer, " expected %q got %q", c.Expected, c.Actual)
		}
		fmt.Fprintln(r.writer)
		if c.Error != "" {
			fmt.Fprintf(r.writer, "    %s\n", r.muted.Render(c.Error))
		}
	}
	for _, n := range result.Notes {
		fmt.Fprintf(r.writer, "  %s\n", r.muted.Render("Note: "+n))
	}
}
