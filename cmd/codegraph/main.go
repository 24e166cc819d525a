// Package main is the entry point for the codegraph CLI tool.
package main

import (
	"github.com/anthropics/codegraph/internal/cmd"
)

func main() {
	cmd.Execute()
}
