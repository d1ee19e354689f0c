// Command evaluator drives pkg/interpreter: a REPL by default, or a
// positional-file run mode. It is the only part of this module allowed
// ambient I/O (spec.md §1); the evaluator core stays a pure library.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}
