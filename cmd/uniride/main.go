package main

import (
	"os"

	"github.com/chachabrian/uniride-backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
