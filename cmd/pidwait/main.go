// pidwait blocks until an arbitrary process exits, without polling on Linux.
package main

import (
	"os"

	"github.com/psantana5/pidwait/cmd/pidwait/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
