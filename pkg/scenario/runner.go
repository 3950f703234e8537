package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/osa-formcheck/pkg/domcheck"
)

// scrollToBottom brings lazily rendered form sections into view.
const scrollToBottom = "window.scrollTo(0, document.body.scrollHeight)"

// Screenshot names a scenario can capture.
const (
	ShotDebug = "debug"
	ShotFinal = "final"
)

// DebugLogger receives diagnostic detail that does not belong on the console.
type DebugLogger interface {
	Debugf(format string, v ...interface{})
}

// Options configures a Runner.
type Options struct {
	// RunID identifies this run in results and logs
	RunID string

	// BaseURL is prefixed to the scenario path
	BaseURL string

	// Driver names the browser backend, for the result only
	Driver string

	// NavigationTimeout bounds the initial page load. Zero uses the driver default.
	NavigationTimeout time.Duration

	// Screenshots maps screenshot names to file paths. Names without a path
	// are not captured.
	Screenshots map[string]string

	// Run is a glob over check names. Checks that do not match are skipped.
	// Empty runs everything.
	Run string

	// Logger receives debug output. Nil discards it.
	Logger DebugLogger

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// Now returns the current time. Nil uses time.Now.
	Now func() time.Time
}

// Runner executes a scenario step by step against one Driver.
type Runner struct {
	driver   Driver
	reporter Reporter
	opts     Options
	filter   glob.Glob
}

// NewRunner creates a runner. It fails only if opts.Run is not a valid glob.
func NewRunner(driver Driver, reporter Reporter, opts Options) (*Runner, error) {
	pattern := opts.Run
	if pattern == "" {
		pattern = "*"
	}
	filter, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid run pattern %q: %w", pattern, err)
	}

	if opts.Logger == nil {
		opts.Logger = discardLogger{}
	}
	if opts.Sleep == nil {
		opts.Sleep = sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		driver:   driver,
		reporter: reporter,
		opts:     opts,
		filter:   filter,
	}, nil
}

// Run executes every step of sc in order. Step failures are recorded and
// never stop the run. If ctx is cancelled the remaining steps are skipped,
// but the summary, final screenshot and driver close still happen.
func (r *Runner) Run(ctx context.Context, sc Scenario) *Result {
	result := &Result{
		RunID:     r.opts.RunID,
		Scenario:  sc.Name,
		URL:       joinURL(r.opts.BaseURL, sc.Path),
		Driver:    r.opts.Driver,
		StartedAt: r.opts.Now(),
	}

	r.reporter.Header(sc.Title)
	r.opts.Logger.Debugf("run %s: scenario %s against %s", result.RunID, sc.Name, result.URL)

	for i, step := range sc.Steps {
		if ctx.Err() != nil {
			result.Interrupted = true
			r.note(result, "run interrupted before step %d (%s)", i+1, step.Title)
			break
		}

		r.opts.Logger.Debugf("step %d: %s %q", i+1, step.Kind, step.Title)
		switch step.Kind {
		case StepLoad:
			r.load(ctx, result, step)
		case StepAdvance:
			r.advance(ctx, result, step)
		case StepCheck:
			r.check(result, step)
		case StepCapture:
			r.capture(result, step.Screenshot, step.Title)
		default:
			r.note(result, "unknown step kind %d at position %d", step.Kind, i+1)
		}
	}

	result.EndedAt = r.opts.Now()
	r.reporter.Summary(result)

	r.capture(result, ShotFinal, "Final")

	if err := r.driver.Close(); err != nil {
		r.opts.Logger.Debugf("close driver: %v", err)
	}

	r.opts.Logger.Debugf("run %s finished: %d passed, %d failed", result.RunID, result.Tally.Passed, result.Tally.Failed)
	return result
}

func (r *Runner) load(ctx context.Context, result *Result, step Step) {
	r.reporter.Infof("Navigating to page...")
	if err := r.driver.Goto(result.URL, r.opts.NavigationTimeout); err != nil {
		// The ready wait below decides whether the page is usable.
		r.reporter.Warningf("navigation error: %v", err)
		r.opts.Logger.Debugf("goto %s: %v", result.URL, err)
	}

	if err := r.opts.Sleep(ctx, step.Settle); err != nil {
		result.Interrupted = true
		return
	}
	if err := r.driver.Evaluate(scrollToBottom); err != nil {
		r.opts.Logger.Debugf("scroll: %v", err)
	}
	if err := r.opts.Sleep(ctx, step.ScrollSettle); err != nil {
		result.Interrupted = true
		return
	}

	if step.ReadySelector == "" {
		return
	}

	r.reporter.Infof("Waiting for form to load...")
	if err := r.driver.WaitFor(step.ReadySelector, step.ReadyTimeout); err != nil {
		r.reporter.Warningf("%s not found", step.ReadySelector)
		r.opts.Logger.Debugf("ready wait: %v", err)
		r.capture(result, ShotDebug, "Debug")
		return
	}
	r.reporter.Infof("Form loaded - %s found", step.ReadySelector)
}

func (r *Runner) advance(ctx context.Context, result *Result, step Step) {
	if step.Policy == CountFailure {
		r.reporter.Section(step.Title)
	}

	start := r.opts.Now()
	err := r.perform(step)
	if err == nil && r.opts.Sleep(ctx, step.After) != nil {
		result.Interrupted = true
		return
	}

	if err != nil {
		switch step.Policy {
		case CountFailure:
			r.reporter.Fail("%s error: %v", step.Title, err)
			result.Tally.Record(false)
			result.Checks = append(result.Checks, CheckResult{
				Name:     step.Name,
				Title:    step.Title,
				Error:    err.Error(),
				Duration: r.opts.Now().Sub(start),
			})
		default:
			r.note(result, "Could not %s: %v", strings.ToLower(step.Title), err)
		}
		return
	}

	if step.Done != "" {
		r.reporter.Infof("%s", step.Done)
	}
	r.inspect(result, step)
}

// perform runs an advance step's actions and clicks its button.
func (r *Runner) perform(step Step) error {
	for _, action := range step.Actions {
		var err error
		switch action.Kind {
		case ActionFill:
			err = r.driver.Fill(action.Selector, action.Value)
		case ActionType:
			if err = r.driver.Fill(action.Selector, ""); err == nil {
				err = r.driver.Type(action.Selector, action.Value, action.Delay)
			}
		case ActionSelect:
			err = r.driver.SelectOption(action.Selector, action.Value)
		default:
			err = fmt.Errorf("unknown action kind %d", action.Kind)
		}
		if err != nil {
			return err
		}
		if step.Policy == CountFailure && action.Kind != ActionSelect {
			r.reporter.Infof("Filled %s", strings.TrimPrefix(action.Selector, "#"))
		}
	}

	if step.Button == "" {
		return nil
	}
	return r.driver.ClickButton(step.Button)
}

// inspect compares the rendered page with what the step expects to reveal.
// Findings are notes only.
func (r *Runner) inspect(result *Result, step Step) {
	if len(step.Expect) == 0 {
		return
	}

	doc, err := r.driver.Content()
	if err != nil {
		r.opts.Logger.Debugf("content after %q: %v", step.Title, err)
		return
	}

	problems, err := domcheck.Check(doc, step.Expect)
	if err != nil {
		r.opts.Logger.Debugf("dom check after %q: %v", step.Title, err)
		return
	}
	for _, p := range problems {
		r.note(result, "after %s: %s", strings.ToLower(step.Title), p)
	}
}

func (r *Runner) check(result *Result, step Step) {
	a := step.Check
	title := step.Title
	if title == "" {
		title = a.Name
	}
	r.reporter.Section(title)

	cr := CheckResult{
		Name:     a.Name,
		Title:    title,
		Selector: a.Selector,
		Input:    a.Input,
		Expected: a.Expected,
	}

	if !r.filter.Match(a.Name) {
		cr.Skipped = true
		result.Checks = append(result.Checks, cr)
		r.reporter.Infof("Skipped (%s does not match run filter)", a.Name)
		return
	}

	start := r.opts.Now()
	actual, err := r.typeAndRead(a)
	cr.Duration = r.opts.Now().Sub(start)
	cr.Actual = actual

	switch {
	case err != nil:
		cr.Error = err.Error()
		r.reporter.Fail("Error: %v", err)
	case actual == a.Expected:
		cr.Passed = true
		r.reporter.Pass("Formatted correctly as %s", a.Expected)
	default:
		r.reporter.Fail("Expected '%s', got '%s'", a.Expected, actual)
	}

	result.Tally.Record(cr.Passed)
	result.Checks = append(result.Checks, cr)
}

func (r *Runner) typeAndRead(a FieldAssertion) (string, error) {
	if a.WaitTimeout > 0 {
		if err := r.driver.WaitFor(a.Selector, a.WaitTimeout); err != nil {
			return "", err
		}
	}
	if err := r.driver.Fill(a.Selector, ""); err != nil {
		return "", err
	}
	if err := r.driver.Type(a.Selector, a.Input, a.Delay); err != nil {
		return "", err
	}

	value, err := r.driver.InputValue(a.Selector)
	if err != nil {
		return "", err
	}
	r.reporter.Infof("Value after typing: '%s'", value)
	return value, nil
}

// capture saves the named screenshot if a path is configured. Errors are
// reported and never affect the tally.
func (r *Runner) capture(result *Result, name, label string) {
	path := r.opts.Screenshots[name]
	if path == "" {
		return
	}

	if err := r.driver.Screenshot(path); err != nil {
		r.reporter.Warningf("%s screenshot failed: %v", label, err)
		r.opts.Logger.Debugf("screenshot %s to %s: %v", name, path, err)
		return
	}

	result.Screenshots = append(result.Screenshots, path)
	r.reporter.Infof("%s screenshot saved to %s", label, path)
}

func (r *Runner) note(result *Result, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	result.Notes = append(result.Notes, msg)
	r.reporter.Note("%s", msg)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

type discardLogger struct{}

func (discardLogger) Debugf(string, ...interface{}) {}
