package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/boyter/gocodewalker"
	"github.com/rlch/cyq"
	"github.com/rlch/cyq/plan"
	"golang.org/x/sync/errgroup"
)

// planSuffix marks plan files.
const planSuffix = ".cyq.yaml"

// ErrNoPlanFiles is returned when no plan files are found under the arguments.
var ErrNoPlanFiles = errors.New("no " + planSuffix + " files found")

// collectPlanFiles expands args into plan file paths, sorted. Directories
// are walked respecting .gitignore; files are taken as given.
func collectPlanFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var (
		mu    sync.Mutex
		files []string
	)

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, arg)

			continue
		}

		err = walkDir(arg, func(path string) {
			if !isPlanFile(path) {
				return
			}

			mu.Lock()
			files = append(files, path)
			mu.Unlock()
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)

	return slices.Compact(files), nil
}

// isPlanFile reports whether path is a plan file. Config files share the
// suffix and are excluded.
func isPlanFile(path string) bool {
	name := filepath.Base(path)

	return strings.HasSuffix(name, planSuffix) && !slices.Contains(cyq.DefaultConfigNames, name)
}

// walkDir calls callback for each file under root, respecting .gitignore.
func walkDir(root string, callback func(path string)) error {
	fileListQueue := make(chan *gocodewalker.File, 100)

	fileWalker := gocodewalker.NewFileWalker(root, fileListQueue)

	var walkErr error

	fileWalker.SetErrorHandler(func(e error) bool {
		walkErr = e

		return true
	})

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for f := range fileListQueue {
			callback(f.Location)
		}
	}()

	if err := fileWalker.Start(); err != nil {
		return err
	}

	wg.Wait()

	return walkErr
}

// loadPlanFiles parses paths concurrently. The result keeps the order of
// paths; the first error cancels the rest.
func loadPlanFiles(ctx context.Context, paths []string) ([]*plan.File, error) {
	files := make([]*plan.File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			f, err := plan.Load(path)
			if err != nil {
				return err
			}

			files[i] = f

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// loadPlans collects and parses the plan files named by args, together with
// the nearest config. A missing config is not an error.
func loadPlans(ctx context.Context, args []string) ([]*plan.File, *cyq.Config, error) {
	paths, err := collectPlanFiles(args)
	if err != nil {
		return nil, nil, err
	}

	if len(paths) == 0 {
		return nil, nil, ErrNoPlanFiles
	}

	cfg, err := cyq.LoadConfig(filepath.Dir(paths[0]))

	switch {
	case errors.Is(err, cyq.ErrConfigNotFound):
		cfg = &cyq.Config{}
	case err != nil:
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	files, err := loadPlanFiles(ctx, paths)
	if err != nil {
		return nil, nil, err
	}

	return files, cfg, nil
}
