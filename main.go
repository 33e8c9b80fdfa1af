package main

import (
	"os"

	"github.com/grendel/keyscope/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
