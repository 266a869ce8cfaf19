package main

import (
	"github.com/supplyline/resolve/cmd/resolve"
)

func main() {
	// Execute initializes all commands and starts the CLI
	resolve.Execute()
}
