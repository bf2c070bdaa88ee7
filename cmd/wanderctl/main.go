// Command wanderctl runs maintenance tasks for the wanderlust service:
// schema migration, master data imports and an Amadeus token check.
package main

import "os"

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
