// main is the entry point of the phone-roster application.
//
// RUNNING THE SERVER:
//
//	go run ./cmd/phone-roster serve --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/phone-roster serve
//
// One-shot commands (lookup, submit, list, export, init) use the same
// configuration; see `phone-roster --help`.
package main

import (
	"fmt"
	"os"

	"github.com/aanand-mishra/phone-roster/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1) // non-zero exit code signals failure to the OS / CI system
	}
}
