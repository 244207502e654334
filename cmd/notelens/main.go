// Command notelens evaluates vision-language model backends against
// human-authored community fact-check notes.
package main

import "github.com/notelens/notelens/internal/cli"

func main() {
	cli.Execute()
}
