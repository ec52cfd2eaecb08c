// Command courier runs the email workers and the tooling around them.
//
//	courier worker              consume the queue and serve /healthz, /readyz, /metrics
//	courier preview <code>      render a handler's mock event
//	courier handlers            list registered handlers
//	courier migrate             apply template store and River migrations
//
// Configuration comes from the environment and an optional .env file; see
// courier.Config.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
