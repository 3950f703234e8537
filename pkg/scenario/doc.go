// Package scenario runs a fixed, ordered list of browser steps against one
// page and records pass/fail outcomes for the field assertions among them.
//
// A run never stops on a failed step. Element timeouts, value mismatches
// and driver errors become failures in the Tally (or notes, for steps
// marked NoteOnly) and the runner moves on, so every assertion is attempted
// and the caller always gets a complete Result. OSA returns the OSA Request
// Form scenario.
package scenario
