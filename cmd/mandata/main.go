// Command mandata runs the reconciliation service: an HTTP API that triggers
// and reports sync runs, plus one-shot subcommands for operators.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
