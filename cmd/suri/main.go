package main

import (
	"fmt"
	"os"

	"suri/internal/logging"
)

func main() {
	defer func() { _ = logging.Close() }()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
