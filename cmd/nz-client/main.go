package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "NetZoneFlow/internal/transport"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		exitWithError(err)
	}
}

// exitWithError prints the error, or the usage text for argument errors, and
// exits with code 1.
func exitWithError(err error) {
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, usageText)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
