package main

import (
	"context"
	"os"

	"github.com/bsidebar/insights/cmd/root"
)

func main() {
	ctx := context.Background()

	if err := root.Execute(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]...); err != nil {
		os.Exit(1)
	}
}
