// Package main provides the drizzledocs CLI entry point.
package main

import (
	"os"

	"github.com/rikeda71/drizzle-docs-generator-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
