// Command debtmap analyzes Rust crates for technical debt.
package main

import "github.com/iepathos/debtmap/cmd"

func main() {
	cmd.Execute()
}
