package main

import (
	"os"

	"github.com/journale/journale-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
