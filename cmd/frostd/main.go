// Command frostd is a runnable demonstration of the node engine and
// session coordinator wired together over transport/local, in the
// shape of drand's cmd/drand-cli entry point. Because transport/local
// is an in-process registry (see transport/local's package doc), the
// "node", "dkg", and "sign" subcommands only see each other when
// joined to the same network name from within the same OS process;
// the bundled "demo" subcommand does exactly that, running a small
// simulated cluster start to finish. A real deployment would swap
// transport/local for a networked transport.Transport implementation
// without changing node.Engine or coordinator.Coordinator at all.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := CLI().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "frostd: %v\n", err)
		os.Exit(1)
	}
}
