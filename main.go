package main

import (
	"context"
	"fmt"
	"os"

	"archive_backend/cmd"
	"archive_backend/internals/configs"
)

func main() {
	cfg := configs.LoadEnv()

	if err := cmd.RootCommand(&cfg).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
