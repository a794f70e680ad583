package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/taskkit/ansi"
	"github.com/baxromumarov/taskkit/config"
	"github.com/baxromumarov/taskkit/fsys"
	"github.com/baxromumarov/taskkit/fsys/glob"
	"github.com/baxromumarov/taskkit/logger"
	"github.com/baxromumarov/taskkit/result"
	"github.com/baxromumarov/taskkit/task"
)

func newGlobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "glob [pattern]",
		Short: "List paths matching a glob pattern",
		Long: `List paths under --cwd matching a pattern such as "**/*.{ts,tsx}".

The walk is bounded by --timeout per attempt and retried --retries times.
With --stat every matched file is read, --concurrency at a time, and its
size is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGlob,
	}

	f := cmd.Flags()
	f.String("cwd", "", "directory to match in (default: working directory)")
	f.Bool("only-files", false, "omit directories")
	f.String("timeout", "", "per-attempt timeout, e.g. 5s")
	f.Int("retries", 0, "retries after the first attempt")
	f.String("retry-delay", "", "base delay of the exponential backoff")
	f.String("concurrency", "", `file reads in flight with --stat: a number, "unbounded" or "batches-of-N"`)
	f.Bool("stat", false, "read every matched file and print its size")
	return cmd
}

func runGlob(cmd *cobra.Command, args []string) error {
	extra := map[string]any{}
	if len(args) == 1 {
		extra["glob.pattern"] = args[0]
	}
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := logger.ContextWithLogger(cmd.Context(), log)

	cwd, err := resolveCwd(cfg.Glob.Cwd)
	if err != nil {
		return err
	}

	fs := fsys.NewOS()
	entries, err := walk(ctx, fs, cfg, cwd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	palette := paletteFor(out)
	if stat, _ := cmd.Flags().GetBool("stat"); stat {
		return printSizes(ctx, out, palette, fs, cfg.Task, cwd, entries)
	}
	for _, e := range entries {
		name := relative(e.Path, cwd)
		if e.IsDir() {
			name = palette.Paint(ansi.Blue, name+"/")
		}
		fmt.Fprintln(out, name)
	}
	return nil
}

func resolveCwd(dir string) (fsys.AbsolutePath, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fsys.AbsolutePath{}, err
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fsys.AbsolutePath{}, err
	}
	return fsys.ParsePath(abs)
}

func relative(p, cwd fsys.AbsolutePath) string {
	rel, err := p.RelativeFrom(cwd)
	if err != nil {
		return p.String()
	}
	return filepath.ToSlash(rel)
}

// policy returns the timeout and retry mappers configured in c, in that
// order, so the timeout bounds each attempt.
func policy[T any](c config.TaskConfig, useResult bool, log logger.Logger) ([]task.Mapper[T, T], error) {
	var mappers []task.Mapper[T, T]

	timeout, ok, err := c.TimeoutOptions(useResult)
	if err != nil {
		return nil, err
	}
	if ok {
		mappers = append(mappers, task.WithTimeout[T](timeout))
	}

	retry, err := c.RetryOptions()
	if err != nil {
		return nil, err
	}
	if retry.Times > 0 {
		retry.OnRetry = func(ev task.RetryEvent) {
			log.Warn("attempt failed, retrying",
				"attempt", ev.Attempt,
				"delay", ev.Delay.String(),
				"err", ev.Failure)
		}
		mappers = append(mappers, task.WithRetry[T](retry))
	}
	return mappers, nil
}

func walk(ctx context.Context, fs fsys.FileSystem, cfg *config.Config, cwd fsys.AbsolutePath) ([]fsys.Entry, error) {
	log := logger.For(logger.FromContext(ctx), "glob")
	opts := glob.Options{
		Pattern:   cfg.Glob.Pattern,
		Cwd:       cwd,
		OnlyFiles: cfg.Glob.OnlyFiles,
	}

	mappers, err := policy[[]fsys.Entry](cfg.Task, false, log)
	if err != nil {
		return nil, err
	}
	var search task.Task[[]fsys.Entry] = func(ctx context.Context) ([]fsys.Entry, error) {
		return glob.Glob(ctx, fs, opts)
	}

	start := time.Now()
	entries, err := task.Pipe(ctx, search, mappers...)
	if err != nil {
		return nil, err
	}
	log.Debug("walk finished",
		"pattern", opts.Pattern,
		"cwd", cwd.String(),
		"matches", len(entries),
		"elapsed", time.Since(start))
	return entries, nil
}

func printSizes(
	ctx context.Context,
	out io.Writer,
	palette ansi.Palette,
	fs fsys.FileSystem,
	c config.TaskConfig,
	cwd fsys.AbsolutePath,
	entries []fsys.Entry,
) error {
	log := logger.For(logger.FromContext(ctx), "stat")

	mappers, err := policy[result.Result[int]](c, true, log)
	if err != nil {
		return err
	}
	conc, err := c.ConcurrencyPolicy()
	if err != nil {
		return err
	}

	var files []fsys.AbsolutePath
	for _, e := range entries {
		if e.IsFile() {
			files = append(files, e.Path)
		}
	}

	tasks := make([]task.Task[result.Result[int]], len(files))
	for i, path := range files {
		var read task.Task[result.Result[int]] = func(context.Context) (result.Result[int], error) {
			return result.Map(fs.ReadFile(path), func(s string) int { return len(s) }), nil
		}
		tasks[i] = task.Compose(read, mappers...)
	}

	sizes, err := task.All(ctx, tasks, conc,
		task.WithOnStart(func(i int) {
			log.Debug("read started", "path", files[i].String())
		}),
		task.WithOnDone(func(i int, err error, elapsed time.Duration) {
			log.Debug("read finished", "path", files[i].String(), "elapsed", elapsed, "err", err)
		}),
	)
	if err != nil {
		return err
	}

	for i, size := range sizes {
		name := relative(files[i], cwd)
		if size.IsErr() {
			fmt.Fprintln(out, palette.Paint(ansi.Red, "       !"), name, palette.Paint(ansi.Gray, size.Failure().Error()))
			continue
		}
		fmt.Fprintf(out, "%s %s\n", palette.Paint(ansi.Gray, fmt.Sprintf("%8d", size.Value())), name)
	}
	return nil
}
