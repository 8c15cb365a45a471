package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/nhscreen/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	root := cli.NewRootCmd(cli.Options{Verbose: isVerbose()})

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func isVerbose() bool {
	return strings.EqualFold(os.Getenv("NHSCREEN_DEBUG"), "1") || strings.EqualFold(os.Getenv("NHSCREEN_DEBUG"), "true")
}
