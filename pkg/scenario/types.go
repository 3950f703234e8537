package scenario

import (
	"time"

	"github.com/entrhq/osa-formcheck/pkg/mask"
)

// Driver is the set of browser actions a scenario needs. Every call blocks
// until the action completes or its own timeout expires.
type Driver interface {
	// Goto navigates to url and waits for the page to load
	Goto(url string, timeout time.Duration) error

	// Evaluate runs a JavaScript expression in the page
	Evaluate(script string) error

	// WaitFor waits until selector matches a visible element
	WaitFor(selector string, timeout time.Duration) error

	// Fill replaces an input's value in one step
	Fill(selector, value string) error

	// Type presses one key per character with delay between keys
	Type(selector, text string, delay time.Duration) error

	// InputValue reads an input's current value
	InputValue(selector string) (string, error)

	// SelectOption selects the option with the given value
	SelectOption(selector, value string) error

	// ClickButton clicks the button whose accessible name is exactly name
	ClickButton(name string) error

	// Screenshot writes a full page image to path
	Screenshot(path string) error

	// Content returns the rendered HTML
	Content() (string, error)

	// Close releases the browser
	Close() error
}

// Reporter receives human readable progress as the scenario runs.
type Reporter interface {
	Header(message string)
	Section(title string)
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Pass(format string, args ...interface{})
	Fail(format string, args ...interface{})
	Note(format string, args ...interface{})
	Summary(result *Result)
}

// StepKind identifies what a step does.
type StepKind int

const (
	// StepLoad navigates to the target and waits for the first field
	StepLoad StepKind = iota
	// StepAdvance fills fields and clicks a button to move the wizard on
	StepAdvance
	// StepCheck types into a field and compares the rendered value
	StepCheck
	// StepCapture saves a screenshot
	StepCapture
)

// String returns the step kind name.
func (k StepKind) String() string {
	switch k {
	case StepLoad:
		return "load"
	case StepAdvance:
		return "advance"
	case StepCheck:
		return "check"
	case StepCapture:
		return "capture"
	default:
		return "unknown"
	}
}

// FailurePolicy decides how a failed advance step affects the tally.
type FailurePolicy int

const (
	// CountFailure adds one failure to the tally
	CountFailure FailurePolicy = iota
	// NoteOnly records a note and leaves the tally alone
	NoteOnly
)

// ActionKind is the kind of a single form interaction.
type ActionKind int

const (
	// ActionFill sets a value in one step
	ActionFill ActionKind = iota
	// ActionType clears the field and types key by key
	ActionType
	// ActionSelect picks an option in a select element
	ActionSelect
)

// Action is one interaction performed while advancing the wizard.
type Action struct {
	Kind     ActionKind
	Selector string
	Value    string
	Delay    time.Duration
}

// FieldAssertion types Input into the field at Selector and expects the
// page to render Expected.
type FieldAssertion struct {
	// Name is the stable identifier used for filtering and artifacts
	Name string

	// Selector locates the input
	Selector string

	// Input is typed one character at a time
	Input string

	// Expected is the literal value the field must show afterwards
	Expected string

	// Mask is the formatter Expected follows
	Mask mask.Kind

	// Delay is the pause between key presses
	Delay time.Duration

	// WaitTimeout bounds the wait for the field. Zero skips the wait.
	WaitTimeout time.Duration
}

// Step is one entry of a scenario. Which fields apply depends on Kind.
type Step struct {
	Kind  StepKind
	Title string

	// StepLoad
	ReadySelector string
	ReadyTimeout  time.Duration
	Settle        time.Duration
	ScrollSettle  time.Duration

	// StepAdvance
	Name    string
	Actions []Action
	Button  string
	After   time.Duration
	Policy  FailurePolicy
	Done    string
	Expect  []string

	// StepCheck
	Check FieldAssertion

	// StepCapture
	Screenshot string
}

// Scenario is an ordered list of steps run against one page.
type Scenario struct {
	Name  string
	Title string
	Path  string
	Steps []Step
}

// Tally counts assertion outcomes for one run.
type Tally struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Record adds one outcome.
func (t *Tally) Record(passed bool) {
	if passed {
		t.Passed++
	} else {
		t.Failed++
	}
}

// CheckResult is the outcome of one assertion or counted step.
type CheckResult struct {
	Name     string        `json:"name"`
	Title    string        `json:"title"`
	Selector string        `json:"selector,omitempty"`
	Input    string        `json:"input,omitempty"`
	Expected string        `json:"expected,omitempty"`
	Actual   string        `json:"actual,omitempty"`
	Passed   bool          `json:"passed"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result is everything a run produced.
type Result struct {
	RunID       string        `json:"run_id"`
	Scenario    string        `json:"scenario"`
	URL         string        `json:"url"`
	Driver      string        `json:"driver,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     time.Time     `json:"ended_at"`
	Tally       Tally         `json:"tally"`
	Checks      []CheckResult `json:"checks"`
	Notes       []string      `json:"notes,omitempty"`
	Screenshots []string      `json:"screenshots,omitempty"`
	Interrupted bool          `json:"interrupted,omitempty"`
}

// Success reports whether the run finished with no failures.
func (r *Result) Success() bool {
	return r.Tally.Failed == 0 && !r.Interrupted
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}
