// Command reconcile runs payout reconciliations against local payout exports
// and writes the reports to a directory.
package main

import (
	"os"
	_ "time/tzdata"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}
