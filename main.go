// Package main is the entry point for the testament CLI.
package main

import "testament.dev/pkg/testament/cmd"

func main() {
	cmd.Execute()
}
