// Command gojvm runs a compiled Java class under the minijvm
// interpreter: <gojvm> [--cp <paths>] [--classpath <paths>] <main.class> [args...]
package main

import (
	"fmt"
	"os"

	"github.com/minijvm/minijvm/internal/launcher"
)

func main() {
	cfg, err := launcher.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	os.Exit(launcher.Run(cfg))
}
