// Package main is the entry point for the refdiff CLI.
package main

import "refdiff.dev/pkg/refdiff/cmd"

func main() {
	cmd.Execute()
}
