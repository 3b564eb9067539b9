// Command loancalc runs the lending engine from the command line.
//
//	loancalc payment --principal 50000 --rate 15 --months 12
//	loancalc schedule --principal 100000 --rate 10 --days 90 --frequency weekly
//	loancalc commission --amount 75000 --json
package main

import (
	"os"

	"github.com/warp/lending-engine/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
