package scenario

import (
	"time"

	"github.com/entrhq/osa-formcheck/pkg/mask"
)

// Screenshot names used by the OSA scenario in addition to ShotDebug and
// ShotFinal.
const (
	ShotStep2 = "step2"
	ShotStep3 = "step3"
)

// OSA timings and values.
const (
	OSAPath = "/get-officials"

	osaSettle         = 5 * time.Second
	osaScrollSettle   = 2 * time.Second
	osaReadyTimeout   = 15 * time.Second
	osaFieldTimeout   = 5 * time.Second
	osaAfterNext      = time.Second
	osaKeyDelay       = 50 * time.Millisecond
	osaFillerKeyDelay = 30 * time.Millisecond

	nextButton = "Next"
)

// OSA returns the OSA Request Form masking scenario: complete step 1, check
// phone and postal code masking on the billing step, then check the event
// contact phone on step 3.
func OSA() Scenario {
	return Scenario{
		Name:  "osa-request-form",
		Title: "OSA FORM VALIDATION TESTS",
		Path:  OSAPath,
		Steps: []Step{
			{
				Kind:          StepLoad,
				Title:         "Load form",
				ReadySelector: "#organizationName",
				ReadyTimeout:  osaReadyTimeout,
				Settle:        osaSettle,
				ScrollSettle:  osaScrollSettle,
			},
			{
				Kind:  StepAdvance,
				Name:  "organization-step",
				Title: "[STEP 1] Organization Information",
				Actions: []Action{
					{Kind: ActionFill, Selector: "#organizationName", Value: "Test Basketball League"},
				},
				Button: nextButton,
				After:  osaAfterNext,
				Policy: CountFailure,
				Done:   "Clicked Next -> Step 2 (Billing)",
				Expect: []string{
					"billingContactName", "billingEmail", "billingPhone", "billingAddress",
					"billingCity", "billingProvince=AB", "billingPostalCode",
				},
			},
			{Kind: StepCapture, Title: "Step 2", Screenshot: ShotStep2},
			{
				Kind:  StepCheck,
				Title: "[TEST 1] Phone number auto-formatting",
				Check: FieldAssertion{
					Name:        "billing-phone",
					Selector:    "#billingPhone",
					Input:       "4035551234",
					Expected:    "(403) 555-1234",
					Mask:        mask.KindPhone,
					Delay:       osaKeyDelay,
					WaitTimeout: osaFieldTimeout,
				},
			},
			{
				Kind:  StepCheck,
				Title: "[TEST 2] Postal code auto-formatting",
				Check: FieldAssertion{
					Name:        "billing-postal-code",
					Selector:    "#billingPostalCode",
					Input:       "t2p1a1",
					Expected:    "T2P 1A1",
					Mask:        mask.KindPostalCode,
					Delay:       osaKeyDelay,
					WaitTimeout: osaFieldTimeout,
				},
			},
			{
				Kind:  StepCheck,
				Title: "[TEST 3] Postal code uppercase conversion",
				Check: FieldAssertion{
					Name:     "billing-postal-code-uppercase",
					Selector: "#billingPostalCode",
					Input:    "a1b2c3",
					Expected: "A1B 2C3",
					Mask:     mask.KindPostalCode,
					Delay:    osaKeyDelay,
				},
			},
			{
				Kind:  StepAdvance,
				Name:  "billing-step",
				Title: "Proceed to Step 3",
				Actions: []Action{
					{Kind: ActionFill, Selector: "#billingContactName", Value: "John Doe"},
					{Kind: ActionFill, Selector: "#billingEmail", Value: "john@example.com"},
					{Kind: ActionFill, Selector: "#billingAddress", Value: "123 Main St"},
					{Kind: ActionFill, Selector: "#billingCity", Value: "Calgary"},
					{Kind: ActionSelect, Selector: "#billingProvince", Value: "AB"},
					{Kind: ActionType, Selector: "#billingPostalCode", Value: "t2p1a1", Delay: osaFillerKeyDelay},
				},
				Button: nextButton,
				After:  osaAfterNext,
				Policy: NoteOnly,
				Done:   "Proceeded to Step 3 (Event Contact)",
				Expect: []string{"eventContactName", "eventContactEmail", "eventContactPhone"},
			},
			{Kind: StepCapture, Title: "Step 3", Screenshot: ShotStep3},
			{
				Kind:  StepCheck,
				Title: "[TEST 4] Event contact phone auto-formatting",
				Check: FieldAssertion{
					Name:        "event-contact-phone",
					Selector:    "#eventContactPhone",
					Input:       "7801234567",
					Expected:    "(780) 123-4567",
					Mask:        mask.KindPhone,
					Delay:       osaKeyDelay,
					WaitTimeout: osaFieldTimeout,
				},
			},
		},
	}
}
