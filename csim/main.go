// Command csim simulates a set-associative cache.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/csim/csim/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
