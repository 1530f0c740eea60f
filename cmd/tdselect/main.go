// Package main is the entry point for the tdselect CLI tool.
package main

import (
	"github.com/tdkit/tdselect/internal/cmd"
)

func main() {
	cmd.Execute()
}
