package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "xtree:", err)
		os.Exit(1)
	}
}
