package main

import (
	"os"

	"github.com/halosani-dev/halosani/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
