// Command amdahl resolves parallel for directives in Go source.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/nickng/amdahl/config"
	"github.com/nickng/amdahl/pfor"
	"github.com/nickng/amdahl/source/build"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logPath    string
	watch      bool
	colour     bool
)

// errFailed is returned when some directive or nest could not be resolved.
var errFailed = errors.New("some directive nests could not be resolved")

var rootCmd = &cobra.Command{
	Use:   "amdahl",
	Short: "Resolve parallel for directives in Go source",
	Long: `amdahl finds for loops annotated with //amdahl:parallel and
//amdahl:collapse directives, validates and collapses each nest and outlines
its body as a single captured region.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Specify analysis log file (use '-' for stderr)")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", false, "Re-run when an input file changes")
	rootCmd.PersistentFlags().BoolVar(&colour, "color", false, "Colour the output")
	rootCmd.AddCommand(resolveCmd, migoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if err != errFailed {
			fmt.Fprintln(os.Stderr, "amdahl:", err)
		}
		os.Exit(1)
	}
}

// run loads files, resolves their nests and passes the analyser to emit. With
// --watch it repeats on every change until interrupted.
func run(cmd *cobra.Command, files []string, emit func(*pfor.Analyser) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	once := func() error {
		a, err := analyse(cfg, files, cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if err := emit(a); err != nil {
			return err
		}
		if a.Failed() > 0 || a.Err() != nil {
			return errFailed
		}
		return nil
	}
	if watch {
		return watchFiles(cmd.Context(), files, cmd.ErrOrStderr(), once)
	}
	return once()
}

func analyse(cfg *config.Config, files []string, out, errOut io.Writer) (*pfor.Analyser, error) {
	var logFiles []string
	conf := build.FromFiles(files).Default()
	switch logPath {
	case "":
	case "-":
		conf = conf.WithBuildLog(os.Stderr, log.LstdFlags)
		logFiles = append(logFiles, "stderr")
	default:
		logFiles = append(logFiles, logPath)
	}
	logFiles = append(logFiles, cfg.Log.Files...)

	info, err := conf.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build failed")
	}
	a := pfor.New(info, errOut)
	if len(logFiles) > 0 || cfg.Log.Development || cfg.Log.Level != "" {
		err := a.SetLog(pfor.LogOptions{
			Development: cfg.Log.Development,
			Level:       cfg.Log.Level,
			Files:       logFiles,
		})
		if err != nil {
			return nil, err
		}
	}
	color.NoColor = !colour
	a.SetOutput(out)
	a.SetPrefix(cfg.Directive.Prefix)
	a.SetWorkers(cfg.Dispatch.Workers)
	a.SetResolver(cfg.ResolverOptions()...)
	a.Analyse()
	return a, nil
}
