package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRoot(newApp()).Execute(); err != nil {
		if !errors.Is(err, errInvalidValue) {
			fmt.Fprintln(os.Stderr, "formguard:", err)
		}
		os.Exit(1)
	}
}
