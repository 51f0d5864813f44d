// Command xstr-trace replays the ownership walkthroughs against a chosen
// allocator and prints every lifecycle transition.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
