// Package runner builds query plans, executes them, and checks their
// expectations, reporting progress as a stream of events.
package runner

import (
	"strings"
	"time"

	"github.com/rlch/cyq"
)

// Action represents the type of plan event.
type Action string

// Action constants for plan events.
const (
	ActionRun    Action = "run"
	ActionBuilt  Action = "built"
	ActionPass   Action = "passed"
	ActionFail   Action = "failed"
	ActionSkip   Action = "skipped"
	ActionError  Action = "error"
	ActionOutput Action = "output"
)

// IsTerminal returns true if this action ends a plan.
func (a Action) IsTerminal() bool {
	return a == ActionPass || a == ActionFail || a == ActionSkip || a == ActionError
}

// Event represents a single plan event emitted during execution.
type Event struct {
	Time    time.Time     // When the event occurred
	RunID   string        // Identifies one Runner.Run call
	Action  Action        // What happened
	Suite   string        // Plan file path
	Path    []string      // ["file plan name"] or nested names
	Elapsed time.Duration // Time taken (for terminal events)
	Output  string        // Log output (for ActionOutput)
	Error   error         // Error details (for ActionFail/ActionError)

	// Set on ActionBuilt.
	Query *cyq.Query

	// For expectation failures
	Expected any
	Actual   any
	Field    string // The failing expectation

	Rows int // Rows returned, for executed plans
}

// PathString returns the path as a slash-separated string.
func (e Event) PathString() string {
	return strings.Join(e.Path, "/")
}

// ID returns a unique identifier: "suite::path::components".
func (e Event) ID() string {
	if e.Suite == "" {
		return strings.Join(e.Path, "::")
	}

	return e.Suite + "::" + strings.Join(e.Path, "::")
}

// PlanName returns the leaf plan name.
func (e Event) PlanName() string {
	if len(e.Path) == 0 {
		return ""
	}

	return e.Path[len(e.Path)-1]
}
