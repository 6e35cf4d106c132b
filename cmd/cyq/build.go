package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rlch/cyq"
	"github.com/rlch/cyq/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:      "build",
		Usage:     "Print the query and parameters of each plan without running it",
		ArgsUsage: "[files or directories...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "output queries as JSON",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "build only plans matching pattern",
			},
		},
		Action: runBuild,
	}
}

// builtPlan is one entry of `cyq build --json`.
type builtPlan struct {
	Path   string     `json:"path"`
	Plan   string     `json:"plan"`
	Mode   cyq.Mode   `json:"mode"`
	Query  string     `json:"query"`
	Params cyq.Params `json:"params"`
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	files, cfg, err := loadPlans(ctx, cmd.Args().Slice())
	if err != nil {
		return err
	}

	filter, err := compileFilter(cmd.String("run"))
	if err != nil {
		return err
	}

	var built []builtPlan

	for _, f := range files {
		models := slices.Concat(f.Models, cfg.Models)

		for _, p := range f.Plans {
			if filter != nil && !filter.MatchString(p.Name) {
				continue
			}

			mode, err := p.ExecMode()
			if err != nil {
				return fmt.Errorf("%s: %s: %w", f.Path, p.Name, err)
			}

			_, q, err := p.Build(models, cyq.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("%s: %s: %w", f.Path, p.Name, err)
			}

			logger.Debug("plan built", zap.String("path", f.Path), zap.String("plan", p.Name))

			built = append(built, builtPlan{Path: f.Path, Plan: p.Name, Mode: mode, Query: q.Text, Params: q.Params})
		}
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(built)
	}

	return printBuilt(os.Stdout, built, runner.IsTerminal(os.Stdout))
}

// compileFilter compiles the --run pattern. Plans are matched by name, the
// same way the runner filters them.
func compileFilter(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil //nolint:nilnil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", runner.ErrInvalidFilter, err)
	}

	return re, nil
}

func plain(s string) string { return s }

func printBuilt(w io.Writer, built []builtPlan, colour bool) error {
	header, keyword, dim := plain, plain, plain

	if colour {
		hs := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
		ks := lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
		ds := lipgloss.NewStyle().Faint(true)
		header = func(s string) string { return hs.Render(s) }
		keyword = func(s string) string { return ks.Render(s) }
		dim = func(s string) string { return ds.Render(s) }
	}

	for i, b := range built {
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintln(w, header(fmt.Sprintf("-- %s: %s (%s)", b.Path, b.Plan, b.Mode)))

		for _, line := range strings.Split(b.Query, "\n") {
			fmt.Fprintln(w, highlight(line, keyword))
		}

		params, err := json.Marshal(b.Params)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, dim("-- params: "+string(params)))
	}

	return nil
}

// keywords are the clause openers highlighted by build, longest first so
// OPTIONAL MATCH wins over MATCH.
var keywords = func() []string {
	kw := []string{
		cyq.KeywordMatch, cyq.KeywordOptionalMatch, cyq.KeywordCreate, cyq.KeywordMerge,
		cyq.KeywordWhere, cyq.KeywordAnd, cyq.KeywordOr, cyq.KeywordRemove,
		cyq.KeywordOnCreateSet, cyq.KeywordOnMatchSet, cyq.KeywordSet,
		cyq.KeywordDelete, cyq.KeywordDetachDelete, cyq.KeywordReturn,
		cyq.KeywordReturnDistinct, cyq.KeywordOrderBy, cyq.KeywordSkip,
		cyq.KeywordLimit, cyq.KeywordWith, cyq.KeywordWithDistinct, "CALL",
	}
	slices.SortFunc(kw, func(a, b string) int { return len(b) - len(a) })

	return kw
}()

func highlight(line string, style func(string) string) string {
	for _, kw := range keywords {
		if line == kw || strings.HasPrefix(line, kw+" ") {
			return style(kw) + line[len(kw):]
		}
	}

	return line
}
