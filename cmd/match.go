package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trewdev/trew"
	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/guard"
	"github.com/trewdev/trew/internal/printer"
	"github.com/trewdev/trew/internal/runner"
	"github.com/trewdev/trew/match"
	"github.com/trewdev/trew/pattern"
)

var (
	matchPattern string
	matchKind    string
	matchGuard   string
)

var matchCmd = &cobra.Command{
	Use:   "match [paths...]",
	Short: "Find pattern matches without rewriting",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		if matchPattern == "" {
			fmt.Println("error: Please provide a pattern with --pattern")
			os.Exit(1)
		}

		kind, err := pattern.KindFromString(matchKind)
		if err != nil {
			logger.Fatal("Invalid pattern kind", zap.Error(err))
		}

		engine := trew.New(gofront.New(), trew.WithLogger(logger))
		handle, err := engine.RegisterPattern(matchPattern, kind)
		if err != nil {
			logger.Fatal("Invalid pattern", zap.Error(err))
		}

		var guardExpr guard.Expr
		if matchGuard != "" {
			guardExpr, err = guard.ParseExpr(matchGuard)
			if err != nil {
				logger.Fatal("Invalid guard expression", zap.Error(err))
			}
		}

		files, err := runner.CollectFiles(args)
		if err != nil {
			logger.Fatal("Failed to collect files", zap.Error(err))
		}

		total := 0
		for _, filename := range files {
			unit, err := gofront.Load(filename)
			if err != nil {
				logger.Error("Error loading file", zap.String("file", filename), zap.Error(err))
				continue
			}
			ctx := match.Context{
				Unit:          unit.Root,
				SourceVersion: unit.Version,
				Resolver:      unit,
			}
			matches, _ := engine.FindMatches(unit.Root, handle, ctx)
			for _, m := range matches {
				if !engine.Guards().Evaluate(m, guardExpr) {
					continue
				}
				fmt.Print(printer.FormatMatch(filename, m, gofront.Render))
				total++
			}
		}
		fmt.Printf("%d match(es)\n", total)
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchPattern, "pattern", "p", "", "Pattern text, e.g. '\"\" + $x'")
	matchCmd.Flags().StringVarP(&matchKind, "kind", "k", "expression", "Pattern kind (expression|statement|annotation)")
	matchCmd.Flags().StringVarP(&matchGuard, "guard", "g", "", "Guard expression filtering the matches")
}
