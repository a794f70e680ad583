package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/taskkit/ansi"
	"github.com/baxromumarov/taskkit/config"
	"github.com/baxromumarov/taskkit/env"
	"github.com/baxromumarov/taskkit/logger"
)

// flagKeys maps command line flags to configuration paths. Only flags the
// user set are applied, so unset flags never mask the environment.
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"log-json":    "log.json",
	"cwd":         "glob.cwd",
	"only-files":  "glob.only_files",
	"timeout":     "task.timeout",
	"retries":     "task.retries",
	"retry-delay": "task.retry_delay",
	"concurrency": "task.concurrency",
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskkit",
		Short:         "Concurrent task toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("log-level", "", "log level: debug, info, warn, error or disabled")
	pf.Bool("log-json", false, "write logs as JSON")
	pf.StringSlice("env-file", nil, ".env files read before the environment")

	root.AddCommand(newGlobCmd())
	return root
}

// loadConfig resolves configuration for cmd, with explicitly set flags and
// extra taking precedence over the environment.
func loadConfig(cmd *cobra.Command, extra map[string]any) (*config.Config, error) {
	overrides := make(map[string]any, len(flagKeys)+len(extra))
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}
	for k, v := range extra {
		overrides[k] = v
	}

	opts := []config.Option{config.WithOverrides(overrides)}
	files, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		opts = append(opts, config.WithEnvFiles(files...))
	}
	return config.Load(opts...)
}

func newLogger(cfg *config.Config, out io.Writer) (logger.Logger, error) {
	lc, err := cfg.Log.LoggerConfig(out)
	if err != nil {
		return nil, err
	}
	lc.Prefix = "taskkit"
	return logger.New(lc), nil
}

func paletteFor(w io.Writer) ansi.Palette {
	if f, ok := w.(*os.File); ok {
		return ansi.Detect(f, env.FromOS())
	}
	return ansi.Palette{}
}
