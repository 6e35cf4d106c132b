package runner

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// expectEnv is the environment expectations are evaluated in.
//
//	count            number of rows returned
//	rows             the rows, e.g. rows[0]["m.title"]
//	params           the query parameters
func expectEnv(rows []map[string]any, params map[string]any) map[string]any {
	if rows == nil {
		rows = []map[string]any{}
	}

	if params == nil {
		params = map[string]any{}
	}

	return map[string]any{
		"count":  len(rows),
		"rows":   rows,
		"params": params,
	}
}

func compileExpectation(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(expectEnv(nil, nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExpectation, src, err)
	}

	return program, nil
}

// checkExpectations evaluates each expectation in order and returns the
// first that does not hold, or "" when all do.
func checkExpectations(expectations []string, rows []map[string]any, params map[string]any) (string, error) {
	env := expectEnv(rows, params)

	for _, src := range expectations {
		program, err := compileExpectation(src)
		if err != nil {
			return "", err
		}

		out, err := expr.Run(program, env)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrExpectation, src, err)
		}

		ok, isBool := out.(bool)
		if !isBool {
			return "", fmt.Errorf("%w: %s returned %T", ErrExpectation, src, out)
		}

		if !ok {
			return src, nil
		}
	}

	return "", nil
}
