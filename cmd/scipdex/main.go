package main

import (
	"log"
	"os"

	"github.com/dshills/scipdex/internal/cli"
)

func main() {
	// Progress rendering owns stdout; diagnostics go to stderr.
	log.SetOutput(os.Stderr)
	cli.Execute()
}
