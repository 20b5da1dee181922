// Command marco generates chef-quality recipes reviewed by a panel of
// simulated experts, with psychonutrition analysis for anxiety management.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alchemorsel/marco/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs one command line and returns the process exit code
func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	c, root := newCLI(out, errOut)
	root.SetIn(in)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		c.report(err)
		return errors.ExitCode(err)
	}
	return 0
}
