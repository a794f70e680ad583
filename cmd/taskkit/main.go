// Command taskkit matches glob patterns against the local filesystem,
// applying timeout, retry and concurrency policies from configuration.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/taskkit/ansi"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, newRootCmd()); err != nil {
		return 1
	}
	return 0
}

// execute runs root and reports any error on its error stream.
func execute(ctx context.Context, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if err != nil {
		p := paletteFor(root.ErrOrStderr())
		fmt.Fprintln(root.ErrOrStderr(), p.Paint(ansi.Red, "error:"), err)
	}
	return err
}
