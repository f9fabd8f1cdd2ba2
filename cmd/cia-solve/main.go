// Command cia-solve is a demonstration CLI around pkg/cia: it solves a
// single problem instance or a directory of them, optionally recording a
// VBC-format search trace for visualization.
package main

import "github.com/adbuerger/pycombina/cmd/cia-solve/cmd"

func main() {
	cmd.Execute()
}
