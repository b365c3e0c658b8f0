package driver

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of running one file from a directory run.
type FileResult struct {
	Path   string
	Output string // captured program output
	Err    error
}

// listFlowFiles returns the sorted list of all *.flow files under dir.
func listFlowFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".flow") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic order.
	sort.Strings(files)
	return files, nil
}

// RunDir runs every *.flow file under dir, up to jobs files in parallel.
// Each file gets its own interpreter and tracer; the sink in opts is shared
// and must therefore be goroutine-safe, which every Sink is. Per-file
// failures land in the results, not in the returned error.
func RunDir(ctx context.Context, dir string, opts Options, jobs int) ([]FileResult, error) {
	files, err := listFlowFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	Logger().Debug("running directory",
		zap.String("dir", dir),
		zap.Int("files", len(files)),
		zap.Int("jobs", jobs))

	// Indices are unique per goroutine, so no mutex is needed.
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var out bytes.Buffer
			fileOpts := opts
			fileOpts.Stdout = &out

			err := RunFile(gctx, path, fileOpts)
			results[i] = FileResult{Path: path, Output: out.String(), Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
