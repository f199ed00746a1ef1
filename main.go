package main

import (
	"os"

	"github.com/anshu3933/tlav/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
