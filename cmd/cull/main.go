package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	version = "dev"
)

// Entry point for the application
func main() {
	root := NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
