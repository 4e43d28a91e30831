package main

import (
	"os"

	"github.com/spec-kit/coffee-shop/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
