package scenario

import (
	"fmt"

	"github.com/entrhq/osa-formcheck/pkg/mask"
)

// Validate checks that the scenario is well formed: names are unique,
// every step has what its kind needs, and each masked assertion's expected
// value is what the mask produces for its input.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %s has no steps", s.Name)
	}

	names := make(map[string]bool)
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Title, err)
		}

		name := step.Name
		if step.Kind == StepCheck {
			name = step.Check.Name
		}
		if name == "" {
			continue
		}
		if names[name] {
			return fmt.Errorf("step %d (%s): duplicate name %q", i+1, step.Title, name)
		}
		names[name] = true
	}
	return nil
}

func (s Step) validate() error {
	switch s.Kind {
	case StepLoad:
		if s.ReadySelector == "" && s.ReadyTimeout > 0 {
			return fmt.Errorf("ready timeout set without a ready selector")
		}
	case StepAdvance:
		if len(s.Actions) == 0 && s.Button == "" {
			return fmt.Errorf("advance step has no actions and no button")
		}
		if s.Policy == CountFailure && s.Name == "" {
			return fmt.Errorf("counted advance step needs a name")
		}
		for j, a := range s.Actions {
			if a.Selector == "" {
				return fmt.Errorf("action %d has no selector", j+1)
			}
		}
	case StepCheck:
		return s.Check.validate()
	case StepCapture:
		if s.Screenshot == "" {
			return fmt.Errorf("capture step needs a screenshot name")
		}
	default:
		return fmt.Errorf("unknown step kind %d", s.Kind)
	}
	return nil
}

func (a FieldAssertion) validate() error {
	if a.Name == "" {
		return fmt.Errorf("assertion name is required")
	}
	if a.Selector == "" {
		return fmt.Errorf("assertion %s has no selector", a.Name)
	}
	if a.Input == "" {
		return fmt.Errorf("assertion %s has no input", a.Name)
	}
	if a.Mask != mask.KindNone {
		if want := mask.Apply(a.Mask, a.Input); want != a.Expected {
			return fmt.Errorf("assertion %s expects %q but the %s mask gives %q for %q",
				a.Name, a.Expected, a.Mask, want, a.Input)
		}
	}
	return nil
}
