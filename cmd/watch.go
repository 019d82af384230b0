package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trewdev/trew"
	"github.com/trewdev/trew/gofront"
	"github.com/trewdev/trew/internal/printer"
	"github.com/trewdev/trew/internal/runner"
)

var watchDryRun bool

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Watch directories and reapply rules on change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide directory paths")
			os.Exit(1)
		}

		engine := trew.New(gofront.New(), trew.WithLogger(logger))
		compiled := loadCompiledRules(engine)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			logger.Fatal("Failed to create watcher", zap.Error(err))
		}
		defer watcher.Close()

		for _, dir := range args {
			err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return watcher.Add(path)
				}
				return nil
			})
			if err != nil {
				logger.Fatal("Error adding directory to watcher", zap.Error(err))
			}
		}

		logger.Info("watching for changes", zap.Strings("paths", args))
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				handleFileEvent(engine, compiled, event)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("watch error", zap.Error(err))
			}
		}
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "Show rewrites without applying them")
}

func handleFileEvent(engine *trew.Engine, rules []*trew.CompiledRule, event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write || filepath.Ext(event.Name) != ".go" {
		return
	}
	// wait for a while after file change to consider multiple changes as one
	time.Sleep(100 * time.Millisecond)

	res, err := runner.ProcessFile(engine, rules, event.Name)
	if err != nil {
		logger.Error("Error processing file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	if !res.Changed() {
		return
	}
	if !watchDryRun {
		if err := os.WriteFile(event.Name, res.Output, 0o644); err != nil {
			logger.Error("Error writing file", zap.String("file", event.Name), zap.Error(err))
			return
		}
	}
	fmt.Print(printer.FormatReport(event.Name, res.Report, watchDryRun))
}
