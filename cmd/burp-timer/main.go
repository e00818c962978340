package main

import (
	"os"

	"github.com/burptools/burp-timer/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
