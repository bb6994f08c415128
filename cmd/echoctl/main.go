// Command echoctl inspects and maintains the assistant's content store
// without going through the HTTP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
