package runner

import (
	"strings"
	"sync"
	"time"

	"github.com/rlch/cyq"
)

// Result accumulates plan results during execution.
type Result struct {
	mu sync.RWMutex

	RunID     string
	StartTime time.Time
	EndTime   time.Time

	Total   int
	Passed  int
	Failed  int
	Skipped int
	Errors  int

	// Plans indexed by path string.
	Plans map[string]*PlanResult

	// Order preserves insertion order for display
	Order []string

	// built holds queries reported before their plan finished.
	built map[string]*cyq.Query
}

// NewResult creates an initialized Result.
func NewResult() *Result {
	return &Result{
		StartTime: time.Now(),
		Plans:     make(map[string]*PlanResult),
		built:     make(map[string]*cyq.Query),
	}
}

// Add records a terminal event in the result.
func (r *Result) Add(event Event) {
	if !event.Action.IsTerminal() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := event.PathString()

	pr := &PlanResult{
		Path:    event.Path,
		Status:  event.Action,
		Elapsed: event.Elapsed,
		Error:   event.Error,
		Rows:    event.Rows,
		Query:   r.built[path],
	}

	if event.Action == ActionFail {
		pr.Expected = event.Expected
		pr.Actual = event.Actual
		pr.Field = event.Field
	}

	r.Plans[path] = pr
	r.Order = append(r.Order, path)
	r.Total++

	switch event.Action {
	case ActionPass:
		r.Passed++
	case ActionFail:
		r.Failed++
	case ActionSkip:
		r.Skipped++
	case ActionError:
		r.Errors++
	case ActionRun, ActionBuilt, ActionOutput:
		// Not terminal actions
	}
}

// AddBuilt remembers the query of a built plan.
func (r *Result) AddBuilt(event Event) {
	if event.Action != ActionBuilt || event.Query == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.built[event.PathString()] = event.Query
}

// AddOutput appends output to an existing plan result.
func (r *Result) AddOutput(event Event) {
	if event.Action != ActionOutput {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := event.PathString()
	if pr, ok := r.Plans[path]; ok {
		pr.Output = append(pr.Output, event.Output)
	}
}

// Finish marks the result as complete.
func (r *Result) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
}

// Elapsed returns the total execution time.
func (r *Result) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}

	return r.EndTime.Sub(r.StartTime)
}

// Ok returns true if no plan failed or errored.
func (r *Result) Ok() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Failed == 0 && r.Errors == 0
}

// FailedPlans returns all failed and errored plan results.
func (r *Result) FailedPlans() []*PlanResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var failed []*PlanResult

	for _, path := range r.Order {
		pr := r.Plans[path]
		if pr.Status == ActionFail || pr.Status == ActionError {
			failed = append(failed, pr)
		}
	}

	return failed
}

// PlanResult holds the outcome of a single plan.
type PlanResult struct {
	Path    []string
	Status  Action
	Elapsed time.Duration
	Error   error
	Output  []string
	Query   *cyq.Query
	Rows    int

	// Expectation failure details
	Expected any
	Actual   any
	Field    string
}

// PathString returns the path as a slash-separated string.
func (pr *PlanResult) PathString() string {
	return strings.Join(pr.Path, "/")
}
