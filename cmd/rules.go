package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trewdev/trew"
	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/rule"
)

var (
	okStyle   = color.New(color.FgGreen, color.Bold)
	badStyle  = color.New(color.FgRed, color.Bold)
	nameStyle = color.New(color.FgCyan, color.Bold)
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Validate and list the rules in a rule file",
	Run: func(cmd *cobra.Command, args []string) {
		if rulesFile == "" {
			fmt.Println("error: Please provide a rule file with --rules")
			os.Exit(1)
		}

		rules, err := rule.LoadFile(rulesFile)
		if err != nil {
			logger.Fatal("Failed to load rule file", zap.Error(err))
		}

		engine := trew.New(gofront.New(), trew.WithLogger(logger))
		bad := 0
		for _, r := range rules {
			c, err := engine.CompileRule(r)
			if err != nil {
				bad++
				fmt.Printf("%s %s: %v\n", badStyle.Sprint("✗"), nameStyle.Sprint(r.Name), err)
				continue
			}
			fmt.Printf("%s %s (%s)\n", okStyle.Sprint("✓"), nameStyle.Sprint(c.Name()), c.Kind)
			if r.Description != "" {
				fmt.Printf("    %s\n", r.Description)
			}
			fmt.Printf("    %s", r.Pattern)
			if r.Guard != "" {
				fmt.Printf(" :: %s", r.Guard)
			}
			fmt.Printf(" => %s\n", r.Replacement)
		}

		fmt.Printf("%d rule(s), %d invalid\n", len(rules), bad)
		if bad > 0 {
			os.Exit(1)
		}
	},
}
