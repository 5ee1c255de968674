// Command portalctl inspects and administers a portal directory from the
// terminal, using the same configuration as the server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorPrefix, err)
		os.Exit(1)
	}
}
