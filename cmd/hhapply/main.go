package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hhapply/internal/invoker"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		// A replacement command's exit status passes through so schedulers
		// watching the wrapper see what the child reported.
		os.Exit(invoker.ExitCode(err))
	}
}
