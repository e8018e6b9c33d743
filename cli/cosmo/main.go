package main

import (
	"os"

	cosmocmder "github.com/cosmohq/cosmo/cmd/cosmo"
)

func main() {
	cmd := cosmocmder.NewCosmoCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
