package runner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rlch/cyq"
	"github.com/rlch/cyq/plan"
	"go.uber.org/zap"
)

// Runner builds and executes plans.
type Runner struct {
	db        cyq.Database
	handler   Handler
	failFast  bool
	dryRun    bool
	filter    *regexp.Regexp
	filterErr error
	models    []cyq.NodeModel
	logger    *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithDatabase sets the database plans execute against.
func WithDatabase(db cyq.Database) Option {
	return func(r *Runner) {
		r.db = db
	}
}

// WithHandler sets the event handler.
func WithHandler(h Handler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithFailFast stops on first failure.
func WithFailFast(enabled bool) Option {
	return func(r *Runner) {
		r.failFast = enabled
	}
}

// WithDryRun builds plans without executing them. Built plans are reported
// as skipped.
func WithDryRun(enabled bool) Option {
	return func(r *Runner) {
		r.dryRun = enabled
	}
}

// WithFilter sets a regex pattern to filter which plans run.
// Plans whose path matches the pattern will be executed.
func WithFilter(pattern string) Option {
	return func(r *Runner) {
		if pattern == "" {
			return
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			r.filterErr = fmt.Errorf("%w: %w", ErrInvalidFilter, err)

			return
		}

		r.filter = re
	}
}

// WithModels adds models available to every plan, in addition to the models
// declared in each plan file.
func WithModels(models []cyq.NodeModel) Option {
	return func(r *Runner) {
		r.models = append(r.models, models...)
	}
}

// WithLogger sets the logger handed to each plan's builder.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner with the given options.
func New(opts ...Option) *Runner {
	r := &Runner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run builds every plan of files in order and, unless in dry-run mode,
// executes it and checks its expectations.
func (r *Runner) Run(ctx context.Context, files []*plan.File) (*Result, error) {
	if r.filterErr != nil {
		return nil, r.filterErr
	}

	if r.db == nil && !r.dryRun {
		return nil, ErrNoDatabase
	}

	result := NewResult()
	result.RunID = uuid.NewString()

	handlers := []Handler{NewResultHandler()}
	if r.handler != nil {
		handlers = append(handlers, r.handler)
	}

	if r.failFast {
		handlers = append(handlers, NewStopOnFailHandler(1))
	}

	handler := NewMultiHandler(handlers...)

	r.logger.Debug("run started",
		zap.String("run_id", result.RunID),
		zap.Int("files", len(files)),
		zap.Bool("dry_run", r.dryRun),
	)

outer:
	for _, file := range files {
		models := slices.Concat(file.Models, r.models)

		for _, p := range file.Plans {
			err := r.runPlan(ctx, file.Path, p, models, handler, result)
			if errors.Is(err, ErrMaxFailures) {
				break outer
			}

			if err != nil {
				return result, err
			}
		}
	}

	result.Finish()

	return result, nil
}

func (r *Runner) runPlan(
	ctx context.Context,
	suitePath string,
	p *plan.Plan,
	models []cyq.NodeModel,
	handler Handler,
	result *Result,
) error {
	path := []string{p.Name}

	if !r.matchesFilter(path) {
		return nil
	}

	start := time.Now()
	event := func(action Action) Event {
		return Event{
			Time:   time.Now(),
			RunID:  result.RunID,
			Action: action,
			Suite:  suitePath,
			Path:   path,
		}
	}

	_ = handler.Event(ctx, event(ActionRun), result)

	fail := func(err error) error {
		e := event(ActionError)
		e.Elapsed = time.Since(start)
		e.Error = err

		return handler.Event(ctx, e, result)
	}

	b, q, err := p.Build(models, cyq.WithDatabase(r.db), cyq.WithLogger(r.logger))
	if err != nil {
		return fail(err)
	}

	built := event(ActionBuilt)
	built.Query = &q
	built.Output = q.Text
	_ = handler.Event(ctx, built, result)

	if r.dryRun {
		e := event(ActionSkip)
		e.Elapsed = time.Since(start)

		return handler.Event(ctx, e, result)
	}

	mode, err := p.ExecMode()
	if err != nil {
		return fail(err)
	}

	rows, err := b.Execute(ctx, mode)
	if err != nil {
		return fail(err)
	}

	failed, err := checkExpectations(p.Expect, rows, q.Params)
	if err != nil {
		return fail(err)
	}

	e := event(ActionPass)
	e.Elapsed = time.Since(start)
	e.Rows = len(rows)

	if failed != "" {
		e.Action = ActionFail
		e.Field = failed
		e.Expected = true
		e.Actual = false
		e.Error = fmt.Errorf("expectation %q does not hold for %d rows", failed, len(rows))
	}

	return handler.Event(ctx, e, result)
}

// matchesFilter returns true if the plan path matches the filter pattern.
// If no filter is set, all plans match.
func (r *Runner) matchesFilter(path []string) bool {
	if r.filter == nil {
		return true
	}

	return r.filter.MatchString(strings.Join(path, "/"))
}
