// Command diskinsight inventories a directory tree or zip archive.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/diskinsight/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Set by ldflags
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
