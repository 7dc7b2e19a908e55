// The main package for the wikicrawler executable.
package main

import (
	"github.com/civ5archive/wikicrawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
