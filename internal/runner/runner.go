// Package runner drives rule application across file sets: path discovery,
// a bounded worker pool, and the per-file load/rewrite/render plumbing the
// CLI commands share.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/trewdev/trew"
	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/rewrite"
)

// Options controls a batch run.
type Options struct {
	DryRun   bool // plan and render, but write nothing back
	Workers  int  // 0 means one worker per CPU
	Progress bool // show a progress bar across the file set
}

// FileResult is the outcome of rewriting one file. Output holds the
// rendered source when at least one operation applied, nil otherwise.
type FileResult struct {
	Filename string
	Report   rewrite.Report
	Output   []byte
}

// Changed reports whether the file's content would change.
func (r FileResult) Changed() bool { return r.Output != nil }

// CollectFiles expands the given paths into the Go files beneath them.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == ".go" {
				files = append(files, path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && filepath.Ext(p) == ".go" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
	}
	return files, nil
}

// ProcessFile loads one file, applies the rule set against its tree, and
// renders the rewritten source. The file on disk is not touched.
func ProcessFile(engine *trew.Engine, rules []*trew.CompiledRule, filename string) (FileResult, error) {
	res := FileResult{Filename: filename}

	unit, err := gofront.Load(filename)
	if err != nil {
		return res, err
	}
	ctx := match.Context{
		Unit:          unit.Root,
		SourceVersion: unit.Version,
		Resolver:      unit,
	}
	newRoot, report := engine.Rewrite(unit.Root, ctx, rules)
	res.Report = report
	if report.Applied == 0 {
		return res, nil
	}

	out, err := gofront.RenderFile(newRoot, trew.RequiredImports(report, rules))
	if err != nil {
		return res, fmt.Errorf("rendering %s: %w", filename, err)
	}
	res.Output = out
	return res, nil
}

// ProcessFiles runs the rule set over every file with a bounded worker
// pool. Unless dry-run is set, changed files are written back in place.
// Per-file failures are logged and do not stop the batch; results come
// back in input order.
func ProcessFiles(ctx context.Context, logger *zap.Logger, engine *trew.Engine, rules []*trew.CompiledRule, files []string, opts Options) ([]FileResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("rewriting"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	results := make([]FileResult, len(files))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i, filename := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		select {
		case <-ctx.Done():
			// drain in-flight workers before giving up so no write
			// back races the return
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := ProcessFile(engine, rules, fp)
			if err == nil && res.Changed() && !opts.DryRun {
				err = os.WriteFile(fp, res.Output, 0o644)
			}
			if err != nil {
				logger.Error("error processing file",
					zap.String("file", fp), zap.Error(err))
			}
			results[i] = res
			if bar != nil {
				bar.Add(1)
			}
		}(i, filename)
	}
	wg.Wait()

	if bar != nil {
		fmt.Println()
	}
	return results, nil
}
