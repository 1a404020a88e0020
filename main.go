// Package main is the entry point for the livesort CLI.
package main

import "livesort.dev/pkg/livesort/cmd"

func main() {
	cmd.Execute()
}
