package main

import (
	"context"
	"fmt"
	"os"

	"docqa/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
