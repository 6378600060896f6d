package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/kuhul/internal/cli"
)

func main() {
	// Optional .env for provider credentials; missing file is fine.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
