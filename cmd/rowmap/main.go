// Command rowmap runs registered queries from the command line.
package main

import (
	"os"

	"github.com/JonMunkholm/rowmap/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
