// Package main provides a pointer to tomasulosim's entry point.
// tomasulosim is a cycle-level Tomasulo/ROB/CPR superscalar pipeline
// simulator.
//
// For the full CLI, use: go run ./cmd/tomasulosim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("tomasulosim - Tomasulo/ROB/CPR superscalar pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: tomasulosim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --trace     Plain-text instruction trace file")
	fmt.Println("  --elf       ARM64 ELF binary to run and replay as a trace")
	fmt.Println("  --config    Path to a JSON simulator config file")
	fmt.Println("  --mode      Recovery mode: 0=baseline, 1=rob, 2=cpr")
	fmt.Println("  --log       Write the per-cycle TSV event log to this file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tomasulosim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tomasulosim' instead.")
	}
}
