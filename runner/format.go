package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Formatter renders plan events and results.
type Formatter interface {
	Format(event Event, result *Result) error
	Summary(result *Result) error
}

// FormatHandler is a Handler that delegates to a Formatter.
type FormatHandler struct {
	formatter Formatter
	stderr    io.Writer
}

// NewFormatHandler creates a handler that formats events.
func NewFormatHandler(f Formatter, stderr io.Writer) *FormatHandler {
	return &FormatHandler{formatter: f, stderr: stderr}
}

// Event formats the event.
func (h *FormatHandler) Event(_ context.Context, event Event, result *Result) error {
	return h.formatter.Format(event, result)
}

// Err writes to stderr.
func (h *FormatHandler) Err(text string) error {
	_, err := h.stderr.Write([]byte(text + "\n"))

	return err
}

// Summary renders the final summary.
func (h *FormatHandler) Summary(result *Result) error {
	return h.formatter.Summary(result)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// palette colours status words. Every entry is the identity when colour is
// off.
type palette struct {
	pass, fail, skip, err, dim func(string) string
}

func plain(s string) string { return s }

func newPalette(colour bool) palette {
	if !colour {
		return palette{pass: plain, fail: plain, skip: plain, err: plain, dim: plain}
	}

	style := func(c string) func(string) string {
		st := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)

		return func(s string) string { return st.Render(s) }
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("#8899A6"))

	return palette{
		pass: style("#00BA7C"),
		fail: style("#F4212E"),
		skip: style("#FFD400"),
		err:  style("#F4212E"),
		dim:  func(s string) string { return dim.Render(s) },
	}
}

// -----------------------------------------------------------------------------
// Dots Formatter
// -----------------------------------------------------------------------------

// DotsFormatter is a minimal formatter that prints dots for progress.
type DotsFormatter struct {
	w     io.Writer
	count int
}

// NewDotsFormatter creates a dots formatter.
func NewDotsFormatter(w io.Writer) *DotsFormatter {
	return &DotsFormatter{w: w}
}

const lineWidth = 80

// Format prints a single character per terminal event.
func (d *DotsFormatter) Format(event Event, _ *Result) error {
	if !event.Action.IsTerminal() {
		return nil
	}

	var char string

	switch event.Action {
	case ActionPass:
		char = "."
	case ActionFail:
		char = "F"
	case ActionSkip:
		char = "S"
	case ActionError:
		char = "E"
	case ActionRun, ActionBuilt, ActionOutput:
		return nil
	}

	_, err := fmt.Fprint(d.w, char)
	d.count++

	if d.count%lineWidth == 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	return err
}

// Summary prints the final results.
func (d *DotsFormatter) Summary(result *Result) error {
	if d.count > 0 && d.count%lineWidth != 0 {
		_, _ = fmt.Fprintln(d.w)
	}

	_, _ = fmt.Fprintln(d.w)

	for _, pr := range result.FailedPlans() {
		switch pr.Status {
		case ActionFail:
			_, _ = fmt.Fprintf(d.w, "FAIL %s\n", pr.PathString())

			if pr.Field != "" {
				_, _ = fmt.Fprintf(d.w, "  %s:\n", pr.Field)
				_, _ = fmt.Fprintf(d.w, "    expected: %v\n", pr.Expected)
				_, _ = fmt.Fprintf(d.w, "    actual:   %v\n", pr.Actual)
			}
		case ActionError:
			_, _ = fmt.Fprintf(d.w, "ERROR %s: %v\n", pr.PathString(), pr.Error)
		case ActionPass, ActionSkip, ActionRun, ActionBuilt, ActionOutput:
			// Not failures
		}

		_, _ = fmt.Fprintln(d.w)
	}

	status := "PASS"
	if !result.Ok() {
		status = "FAIL"
	}

	_, _ = fmt.Fprintf(d.w, "%s %d plans, %d passed, %d failed, %d skipped in %s\n",
		status,
		result.Total,
		result.Passed,
		result.Failed,
		result.Skipped,
		result.Elapsed().Round(time.Millisecond),
	)

	return nil
}

// -----------------------------------------------------------------------------
// Verbose Formatter
// -----------------------------------------------------------------------------

// VerboseFormatter prints full plan names, built queries and output.
type VerboseFormatter struct {
	w       io.Writer
	palette palette
}

// NewVerboseFormatter creates a verbose formatter. Status words are coloured
// when w is a terminal.
func NewVerboseFormatter(w io.Writer) *VerboseFormatter {
	return &VerboseFormatter{w: w, palette: newPalette(IsTerminal(w))}
}

// Format prints each event as it occurs.
func (v *VerboseFormatter) Format(event Event, _ *Result) error {
	p := v.palette

	switch event.Action {
	case ActionRun:
		_, _ = fmt.Fprintf(v.w, "=== RUN   %s\n", event.PathString())
	case ActionBuilt:
		for line := range strings.SplitSeq(event.Output, "\n") {
			_, _ = fmt.Fprintf(v.w, "    %s\n", p.dim(line))
		}
	case ActionPass:
		_, _ = fmt.Fprintf(v.w, "--- %s: %s (%s, %d rows)\n", p.pass("PASS"), event.PathString(), event.Elapsed, event.Rows)
	case ActionFail:
		_, _ = fmt.Fprintf(v.w, "--- %s: %s (%s)\n", p.fail("FAIL"), event.PathString(), event.Elapsed)

		if event.Field != "" {
			_, _ = fmt.Fprintf(v.w, "    %s:\n", event.Field)
			_, _ = fmt.Fprintf(v.w, "        expected: %v\n", event.Expected)
			_, _ = fmt.Fprintf(v.w, "        actual:   %v\n", event.Actual)
		}
	case ActionSkip:
		_, _ = fmt.Fprintf(v.w, "--- %s: %s (%s)\n", p.skip("SKIP"), event.PathString(), event.Elapsed)
	case ActionError:
		_, _ = fmt.Fprintf(v.w, "--- %s: %s (%s)\n", p.err("ERROR"), event.PathString(), event.Elapsed)
		_, _ = fmt.Fprintf(v.w, "    %v\n", event.Error)
	case ActionOutput:
		_, _ = fmt.Fprintf(v.w, "    %s\n", event.Output)
	}

	return nil
}

// Summary prints the final results.
func (v *VerboseFormatter) Summary(result *Result) error {
	_, _ = fmt.Fprintln(v.w)

	status := v.palette.pass("PASS")
	if !result.Ok() {
		status = v.palette.fail("FAIL")
	}

	_, _ = fmt.Fprintf(v.w, "%s\n", status)
	_, _ = fmt.Fprintf(v.w, "  %d total, %d passed, %d failed, %d skipped, %d errors\n",
		result.Total,
		result.Passed,
		result.Failed,
		result.Skipped,
		result.Errors,
	)
	_, _ = fmt.Fprintf(v.w, "  elapsed: %s\n", result.Elapsed().Round(time.Millisecond))

	return nil
}

// -----------------------------------------------------------------------------
// JSON Formatter
// -----------------------------------------------------------------------------

// JSONFormatter outputs newline-delimited JSON events.
type JSONFormatter struct {
	enc *json.Encoder
}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Time     string         `json:"time"`
	RunID    string         `json:"run_id,omitempty"`
	Action   string         `json:"action"`
	Suite    string         `json:"suite,omitempty"`
	Path     string         `json:"path"`
	Plan     string         `json:"plan,omitempty"`
	Elapsed  float64        `json:"elapsed,omitempty"`
	Query    string         `json:"query,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
	Rows     int            `json:"rows,omitempty"`
	Output   string         `json:"output,omitempty"`
	Error    string         `json:"error,omitempty"`
	Field    string         `json:"field,omitempty"`
	Expected any            `json:"expected,omitempty"`
	Actual   any            `json:"actual,omitempty"`
}

// Format outputs a JSON event.
func (j *JSONFormatter) Format(event Event, _ *Result) error {
	je := jsonEvent{
		Time:   event.Time.Format(time.RFC3339Nano),
		RunID:  event.RunID,
		Action: string(event.Action),
		Suite:  event.Suite,
		Path:   event.PathString(),
		Plan:   event.PlanName(),
	}

	if event.Action.IsTerminal() {
		je.Elapsed = event.Elapsed.Seconds()
		je.Rows = event.Rows
	}

	if event.Query != nil {
		je.Query = event.Query.Text
		je.Params = event.Query.Params
	} else if event.Output != "" {
		je.Output = event.Output
	}

	if event.Error != nil {
		je.Error = event.Error.Error()
	}

	if event.Action == ActionFail {
		je.Field = event.Field
		je.Expected = event.Expected
		je.Actual = event.Actual
	}

	return j.enc.Encode(je)
}

type jsonSummary struct {
	Action  string  `json:"action"`
	RunID   string  `json:"run_id,omitempty"`
	Total   int     `json:"total"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Skipped int     `json:"skipped"`
	Errors  int     `json:"errors"`
	Elapsed float64 `json:"elapsed"`
	Ok      bool    `json:"ok"`
}

// Summary outputs the final JSON summary.
func (j *JSONFormatter) Summary(result *Result) error {
	return j.enc.Encode(jsonSummary{
		Action:  "summary",
		RunID:   result.RunID,
		Total:   result.Total,
		Passed:  result.Passed,
		Failed:  result.Failed,
		Skipped: result.Skipped,
		Errors:  result.Errors,
		Elapsed: result.Elapsed().Seconds(),
		Ok:      result.Ok(),
	})
}

// NewFormatter creates a formatter by name: dots, verbose or json. Unknown
// names fall back to dots.
func NewFormatter(name string, w io.Writer) Formatter { //nolint:ireturn
	switch name {
	case "verbose":
		return NewVerboseFormatter(w)
	case "json":
		return NewJSONFormatter(w)
	default:
		return NewDotsFormatter(w)
	}
}
