package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trewdev/trew"
	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/internal/printer"
	"github.com/trewdev/trew/internal/runner"
	"github.com/trewdev/trew/rule"
)

var (
	dryRun  bool
	workers int
)

var applyCmd = &cobra.Command{
	Use:   "apply [paths...]",
	Short: "Apply a rule file across source trees",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine := trew.New(gofront.New(), trew.WithLogger(logger))
		compiled := loadCompiledRules(engine)

		files, err := runner.CollectFiles(args)
		if err != nil {
			logger.Fatal("Failed to collect files", zap.Error(err))
		}

		results, err := runner.ProcessFiles(ctx, logger, engine, compiled, files, runner.Options{
			DryRun:   dryRun,
			Workers:  workers,
			Progress: len(files) > 1,
		})
		if err != nil {
			logger.Fatal("Batch run aborted", zap.Error(err))
		}

		changed, applied := 0, 0
		for _, res := range results {
			if out := printer.FormatReport(res.Filename, res.Report, dryRun); out != "" {
				fmt.Print(out)
			}
			if res.Changed() {
				changed++
			}
			applied += res.Report.Applied
		}
		fmt.Printf("%d file(s) changed, %d rewrite(s) applied\n", changed, applied)
	},
}

func init() {
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (show rewrites without applying them)")
	applyCmd.Flags().IntVar(&workers, "workers", 0, "Number of parallel workers (0 = one per CPU)")
}

// loadCompiledRules loads the --rules file and compiles it against the
// engine's front end, exiting on any malformed rule.
func loadCompiledRules(engine *trew.Engine) []*trew.CompiledRule {
	if rulesFile == "" {
		fmt.Println("error: Please provide a rule file with --rules")
		os.Exit(1)
	}
	rules, err := rule.LoadFile(rulesFile)
	if err != nil {
		logger.Fatal("Failed to load rule file", zap.Error(err))
	}
	compiled, err := engine.CompileRules(rules)
	if err != nil {
		logger.Fatal("Failed to compile rules", zap.Error(err))
	}
	return compiled
}
