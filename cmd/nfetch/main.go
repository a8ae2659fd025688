// Command nfetch sends HTTP requests described in YAML files.
package main

import (
	"os"

	"github.com/kbukum/netfoundation/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
