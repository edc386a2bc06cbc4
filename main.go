// Package main is the entry point for the rcpilot CLI.
package main

import "rcpilot.dev/pkg/rcpilot/cmd"

func main() {
	cmd.Execute()
}
