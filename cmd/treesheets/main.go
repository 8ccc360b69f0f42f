package main

import (
	"fmt"
	"os"

	"github.com/kobzarvs/treesheets/internal/app"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	var err error
	switch {
	case len(args) > 0 && args[0] == "--export-text":
		err = app.New(args[1:]).Export(os.Stdout)
	case len(args) > 0 && args[0] == "--stats":
		err = app.New(args[1:]).Stats(os.Stdout, 96)
	default:
		err = app.New(args).Run()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "treesheets:", err)
		os.Exit(1)
	}
}
