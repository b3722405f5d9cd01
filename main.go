// Package main is the entry point for the tennismetrics CLI tool, which imports
// charted tennis matches and computes per-player shot pattern metrics.
package main

import "github.com/pable/go-tennis-metrics/cmd"

func main() {
	cmd.Execute()
}
