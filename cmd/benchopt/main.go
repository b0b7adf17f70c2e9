package main

import (
	"os"

	"benchopt/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
