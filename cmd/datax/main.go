// Package main provides the datax CLI: a batch tool that ingests
// social-media engagement metrics into a local SQLite warehouse and
// recomputes day-over-day deltas per post series.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
